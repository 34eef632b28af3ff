package entities

type BookingEmailData struct {
	UserName      string
	BookingID     int
	ServiceName   string
	CenterName    string
	VehicleLabel  string
	Status        string
	DateFormatted string
	CurrentYear   int
}
