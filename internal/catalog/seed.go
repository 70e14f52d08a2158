package catalog

import (
	"strconv"
	"time"

	"unigang/annex/internal/models"
)

// Universities is the fixed campus list offered by the campus filter.
var Universities = []string{
	"University of Colombo",
	"University of Peradeniya",
	"University of Sri Jayewardenepura",
	"University of Kelaniya",
	"University of Moratuwa",
	"University of Jaffna",
	"University of Ruhuna",
	"Eastern University",
	"South Eastern University",
	"Rajarata University",
	"Sabaragamuwa University",
	"Wayamba University",
	"Uva Wellassa University",
	"University of the Visual and Performing Arts",
	"Open University of Sri Lanka",
	"SLIIT",
	"NSBM Green University",
}

var seedEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type seedRow struct {
	title, price, address, campus, contact, phone string
	features                                      []string
}

var seedRows = []seedRow{
	{"3 bedroom house for rent - Peradeniya", "25000", "No. 123, Mal Road, Peradeniya", "University of Peradeniya", "Kamal Perera", "077-1234567", []string{"3 bedrooms", "Living room", "Kitchen", "Bathroom", "Parking"}},
	{"Rent a room - Moratuwa University", "18000", "No. 45, Saman Mawatha, Moratuwa", "University of Moratuwa", "Sunil Silva", "071-2345678", []string{"AC", "Wi-Fi", "Bathroom"}},
	{"Annex Near Peradeniya", "15000", "No. 9, Galaha Road, Peradeniya", "University of Peradeniya", "Nimal Bandara", "070-3456789", []string{"Attached bathroom", "Separate entrance"}},
	{"Comfortable Room in Moratuwa", "12000", "No. 17, Station Road, Moratuwa", "University of Moratuwa", "Ruwan Fernando", "076-4567890", []string{"Furnished", "Wi-Fi"}},
	{"Girls annex close to Colombo campus", "20000", "No. 6, Thurstan Road, Colombo 03", "University of Colombo", "Dilani Jayasinghe", "077-5678901", []string{"Girls only", "Meals available"}},
	{"Single room - Nugegoda", "14000", "No. 88, Stanley Thilakarathne Mawatha, Nugegoda", "University of Sri Jayewardenepura", "Chamara Weerasinghe", "071-6789012", []string{"Study table", "Shared kitchen"}},
	{"Two-room annex in Kelaniya", "16000", "No. 21, Dalugama, Kelaniya", "University of Kelaniya", "Priyanka Dias", "072-7890123", []string{"2 rooms", "Bathroom", "Water included"}},
	{"Boys hostel - Jaffna town", "9000", "No. 4, Temple Road, Jaffna", "University of Jaffna", "Suresh Kumar", "077-8901234", []string{"Shared room", "Meals available"}},
	{"Sea view annex - Matara", "13000", "No. 52, Beach Road, Matara", "University of Ruhuna", "Lasith Gunawardena", "070-9012345", []string{"Sea view", "Fan", "Bathroom"}},
	{"Room near Wellamadama", "11000", "No. 3, Wellamadama Road, Matara", "University of Ruhuna", "Harsha Rajapaksha", "076-0123456", []string{"Walking distance", "Wi-Fi"}},
	{"Annex for two students - Mihintale", "10000", "No. 14, Main Street, Mihintale", "Rajarata University", "Ajith Senanayake", "077-1122334", []string{"2 beds", "Kitchen"}},
	{"Quiet room - Belihuloya", "8500", "No. 7, Pambahinna, Belihuloya", "Sabaragamuwa University", "Manoj Herath", "071-2233445", []string{"Quiet area", "Bathroom"}},
	{"Furnished annex - Kuliyapitiya", "12500", "No. 30, Hettipola Road, Kuliyapitiya", "Wayamba University", "Sanduni Wickramasinghe", "072-3344556", []string{"Furnished", "Parking"}},
	{"Student room - Badulla", "9500", "No. 11, Passara Road, Badulla", "Uva Wellassa University", "Kasun Abeysekara", "077-4455667", []string{"Hot water", "Wi-Fi"}},
	{"Annex near Malabe campus", "22000", "No. 40, New Kandy Road, Malabe", "SLIIT", "Tharindu Peris", "070-5566778", []string{"AC", "Attached bathroom", "Wi-Fi"}},
	{"Shared room - Homagama", "10500", "No. 19, Pitipana, Homagama", "NSBM Green University", "Isuru Madushanka", "076-6677889", []string{"Shared room", "Bus route"}},
	{"Room close to Nawala", "17000", "No. 25, Nawala Road, Nawala", "Open University of Sri Lanka", "Anjali Ratnayake", "071-7788990", []string{"Study table", "Wi-Fi"}},
	{"Annex for art students - Colombo 07", "23000", "No. 2, Albert Crescent, Colombo 07", "University of the Visual and Performing Arts", "Nadeesha Gamage", "077-8899001", []string{"Large room", "Natural light"}},
	{"Room in Oluvil", "8000", "No. 5, University Road, Oluvil", "South Eastern University", "Rizwan Ahamed", "072-9900112", []string{"Meals available", "Fan"}},
	{"Annex near Vantharumoolai", "8500", "No. 12, Chenkalady, Batticaloa", "Eastern University", "Kannan Raj", "070-0011223", []string{"Bathroom", "Well water"}},
}

// Seed returns a fresh copy of the demo listings. Identifiers follow insertion order starting at "1".
func Seed() []models.Listing {
	out := make([]models.Listing, len(seedRows))
	for i, r := range seedRows {
		out[i] = models.Listing{
			ID:           strconv.Itoa(i + 1),
			Title:        r.title,
			Price:        models.MustFormatPrice(r.price),
			Address:      r.address,
			Description:  r.title + ". Close to " + r.campus + ", contact the owner to arrange a visit.",
			Features:     append([]string(nil), r.features...),
			Images:       []string{},
			Campus:       r.campus,
			ContactName:  r.contact,
			ContactPhone: r.phone,
			CreatedAt:    seedEpoch,
			UpdatedAt:    seedEpoch,
		}
	}
	return out
}
