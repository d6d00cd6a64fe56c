package data

type HasID struct {
	ID string
}

func (h HasID) GetID() string {
	return h.ID
}
