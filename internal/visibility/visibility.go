// Package visibility решает, какие события видит конкретный зритель.
//
// Две политики намеренно различаются:
//   - владелец видит событие, если хотя бы один из его партнёров отмечен видимым;
//   - держатель share-ссылки видит событие с партнёрами только если хотя бы один
//     партнёр входит в белый список ссылки (пустой список скрывает все такие события).
//
// События без партнёров в обоих случаях управляются флагом includeNoPartner.
// Функции чистые: не меняют вход и сохраняют порядок событий.
package visibility

import "Chest/internal/model"

// VisibilityMap строит карту «id партнёра → видимость».
func VisibilityMap(partners []model.Partner) map[string]bool {
	m := make(map[string]bool, len(partners))
	for _, p := range partners {
		m[p.ID] = p.IsVisible
	}
	return m
}

// FilterOwnerView возвращает события, видимые владельцу.
// Партнёр, отсутствующий в карте, считается скрытым.
func FilterOwnerView(events []model.Event, partnerVisible map[string]bool, includeNoPartner bool) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if len(e.Partners) == 0 {
			if includeNoPartner {
				out = append(out, e)
			}
			continue
		}
		for _, p := range e.Partners {
			if partnerVisible[p.ID] {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterShareView возвращает события, доступные по share-ссылке.
func FilterShareView(events []model.Event, includedPartnerIDs []string, includeNoPartner bool) []model.Event {
	included := make(map[string]struct{}, len(includedPartnerIDs))
	for _, id := range includedPartnerIDs {
		included[id] = struct{}{}
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if len(e.Partners) == 0 {
			if includeNoPartner {
				out = append(out, e)
			}
			continue
		}
		if len(included) == 0 {
			continue
		}
		for _, p := range e.Partners {
			if _, ok := included[p.ID]; ok {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
