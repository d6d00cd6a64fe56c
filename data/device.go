package data

// A device as reported by the vendor cloud.
type Device struct {
	ID          string
	Name        string
	ProductName string
	Model       string
	Status      []Status
}

// A signal code and its current value on a device.
type Status struct {
	Code  string
	Value Value
}

// Status codes declared by the device, in vendor order.
func (d Device) Codes() []string {
	codes := make([]string, 0, len(d.Status))
	for _, status := range d.Status {
		codes = append(codes, status.Code)
	}
	return codes
}
