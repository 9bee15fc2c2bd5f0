package domain

import "time"

// Plan описывает тариф размещения объявления.
// 0 в лимитах означает "без ограничений".
type Plan struct {
	Type         PlanType
	Name         string
	Validity     time.Duration
	MaxPhotos    int
	MaxLeads     int
	BoostRank    int
	PriceDisplay string
}

const day = 24 * time.Hour

var plans = []Plan{
	// Бесплатное размещение не ограничивает фото и лиды: тариф влияет на продвижение,
	// а не на сами данные. Срок - как у самого короткого платного тарифа.
	{Type: PlanFree, Name: "Free", Validity: 30 * day, MaxPhotos: 0, MaxLeads: 0, BoostRank: 0, PriceDisplay: "₹0"},
	{Type: PlanBasic, Name: "Basic", Validity: 30 * day, MaxPhotos: 5, MaxLeads: 10, BoostRank: 1, PriceDisplay: "₹999"},
	{Type: PlanPremium, Name: "Premium", Validity: 60 * day, MaxPhotos: 15, MaxLeads: 25, BoostRank: 2, PriceDisplay: "₹2,499"},
	{Type: PlanAssisted, Name: "Assisted", Validity: 90 * day, MaxPhotos: 0, MaxLeads: 0, BoostRank: 3, PriceDisplay: "₹4,999"},
}

// Plans возвращает каталог тарифов в порядке возрастания
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanFor возвращает тариф по типу. Неизвестный тип трактуется как free.
func PlanFor(t PlanType) Plan {
	for _, p := range plans {
		if p.Type == t {
			return p
		}
	}
	return plans[0]
}

func (p Plan) ExpiresAt(from time.Time) time.Time {
	return from.Add(p.Validity).UTC()
}

func (p Plan) AllowsPhotos(n int) bool {
	return p.MaxPhotos == 0 || n <= p.MaxPhotos
}
