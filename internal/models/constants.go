package models

// Категории услуг, из которых профессионал выбирает одну при регистрации.
const (
	CategoryElectrician  = "Electrician"
	CategoryPlumber      = "Plumber"
	CategoryCarpenter    = "Carpenter"
	CategoryPainter      = "Painter"
	CategoryMechanic     = "Mechanic"
	CategoryACTechnician = "AC Technician"
	CategoryTutor        = "Tutor"
	CategoryCleaner      = "Cleaner"
	CategoryMason        = "Mason"
	CategoryWelder       = "Welder"
	CategoryGardener     = "Gardener"
	CategoryDriver       = "Driver"
)

// Categories упорядоченный список категорий для отдачи фронтенду.
var Categories = []string{
	CategoryElectrician,
	CategoryPlumber,
	CategoryCarpenter,
	CategoryPainter,
	CategoryMechanic,
	CategoryACTechnician,
	CategoryTutor,
	CategoryCleaner,
	CategoryMason,
	CategoryWelder,
	CategoryGardener,
	CategoryDriver,
}

// ValidCategories множество допустимых категорий.
var ValidCategories = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// События, отправляемые через канал уведомлений.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)
