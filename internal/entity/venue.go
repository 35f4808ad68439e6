package entity

// Venues is the closed set of locations a request can be raised for.
var Venues = []string{
	"Patrajasa",
	"Slipi",
	"Brin Gatsu",
	"Lippo",
	"Brin Thamrin",
	"Dharmagati",
	"Seskoad",
	"Samisara",
	"Bripens",
	"Paramita",
}

// IsVenue reports whether name is one of the known venues.
func IsVenue(name string) bool {
	for _, v := range Venues {
		if v == name {
			return true
		}
	}
	return false
}
