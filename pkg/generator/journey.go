package generator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"go.uber.org/zap"
)

type cartItem struct {
	ProductId string
	Quantity  int
	Price     float64
}

// SimulateJourney emits one full user journey. The hour's traffic multiplier
// scales the error injection rates, mimicking load-correlated failures.
func (s *Simulator) SimulateJourney(currentHour int) {
	user := s.users[s.rng.Intn(len(s.users))]
	pattern := trafficPatterns[currentHour%24]

	s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/"})
	s.sleep(100*time.Millisecond, 500*time.Millisecond)

	loginEvent := model.EventLogin
	if s.rng.Float64() < 0.5 {
		loginEvent = model.EventUserRegistration
	}
	s.logEvent(loginEvent, user, nil)
	s.sleep(100*time.Millisecond, 500*time.Millisecond)

	if s.rng.Float64() < 0.05+pattern*0.02 {
		s.logError(user, s.randomError(), nil)
		s.sleep(100*time.Millisecond, 300*time.Millisecond)
	}

	browsed := s.browseProducts(user)

	if s.rng.Float64() < 0.5+pattern*0.1 {
		term := searchTerms[s.rng.Intn(len(searchTerms))]
		s.logEvent(model.EventSearch, user, map[string]interface{}{
			"search_term":   term,
			"results_count": s.rng.Intn(21),
		})
		s.sleep(100*time.Millisecond, 500*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/search?q=" + term})
	}

	cart := s.fillCart(user, browsed)
	cart = s.maybeRemoveFromCart(user, cart)

	purchased := false
	if len(cart) > 0 {
		purchased = s.checkout(user, cart, pattern)
		if !purchased {
			// an abandoned checkout ends the visit right there
			return
		}
	} else {
		s.logEvent(model.EventCartAbandoned, user, map[string]interface{}{"reason": "no_items_in_cart"})
		s.sleep(100*time.Millisecond, 500*time.Millisecond)
	}

	if s.rng.Float64() < 0.2 {
		product := s.products[s.rng.Intn(len(s.products))]
		s.logEvent(model.EventAddToWishlist, user, map[string]interface{}{
			"product_id":   product.ProductId,
			"product_name": product.Name,
		})
		s.sleep(100*time.Millisecond, 300*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/wishlist"})
	}

	if purchased && len(browsed) > 0 && s.rng.Float64() < 0.1 {
		reviewed := browsed[s.rng.Intn(len(browsed))]
		s.logEvent(model.EventSubmitReview, user, map[string]interface{}{
			"product_id":  reviewed.ProductId,
			"rating":      1 + s.rng.Intn(5),
			"review_text": fmt.Sprintf("Great product! Very satisfied with %s.", reviewed.Name),
		})
		s.sleep(100*time.Millisecond, 500*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{
			"page_url": fmt.Sprintf("/products/%s/review", reviewed.ProductId),
		})
	}

	if s.rng.Float64() < 0.8-pattern*0.1 {
		s.logEvent(model.EventLogout, user, nil)
		s.sleep(100*time.Millisecond, 500*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/logout"})
	}

	s.logEvent(model.EventUserSessionEnd, user, map[string]interface{}{
		"duration_seconds": 30 + s.rng.Intn(271),
	})
}

func (s *Simulator) browseProducts(user User) []Product {
	count := 1 + s.rng.Intn(5)
	browsed := make([]Product, 0, count)
	seen := make(map[int]bool)
	for len(browsed) < count && len(seen) < len(s.products) {
		i := s.rng.Intn(len(s.products))
		if seen[i] {
			continue
		}
		seen[i] = true
		product := s.products[i]
		browsed = append(browsed, product)

		s.logEvent(model.EventProductView, user, map[string]interface{}{
			"product_id":   product.ProductId,
			"product_name": product.Name,
			"price":        product.Price,
		})
		s.sleep(100*time.Millisecond, 300*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{
			"page_url": "/products/" + product.ProductId,
		})

		if s.rng.Float64() < 0.01 {
			s.logError(user, errorByCode("PRODUCT_NOT_FOUND"), map[string]interface{}{
				"product_id": "non-existent-id",
			})
			s.sleep(100*time.Millisecond, 300*time.Millisecond)
		}
	}
	return browsed
}

func (s *Simulator) fillCart(user User, browsed []Product) []cartItem {
	if len(browsed) == 0 {
		return nil
	}
	count := 1 + s.rng.Intn(3)
	if count > len(browsed) {
		count = len(browsed)
	}

	var cart []cartItem
	for _, product := range browsed[:count] {
		quantity := 1 + s.rng.Intn(2)
		if s.rng.Float64() < 0.03 && product.Stock < quantity {
			s.logError(user, errorByCode("OUT_OF_STOCK"), map[string]interface{}{
				"product_id": product.ProductId,
			})
			s.sleep(100*time.Millisecond, 300*time.Millisecond)
			continue
		}

		s.logEvent(model.EventAddToCart, user, map[string]interface{}{
			"product_id":   product.ProductId,
			"product_name": product.Name,
			"quantity":     quantity,
			"price":        product.Price,
		})
		cart = append(cart, cartItem{ProductId: product.ProductId, Quantity: quantity, Price: product.Price})
		s.sleep(100*time.Millisecond, 300*time.Millisecond)
		s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/cart"})
	}
	return cart
}

func (s *Simulator) maybeRemoveFromCart(user User, cart []cartItem) []cartItem {
	if len(cart) == 0 || s.rng.Float64() >= 0.3 {
		return cart
	}
	removed := cart[s.rng.Intn(len(cart))]
	s.logEvent(model.EventRemoveFromCart, user, map[string]interface{}{
		"product_id": removed.ProductId,
	})
	s.sleep(100*time.Millisecond, 300*time.Millisecond)
	s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/cart"})

	kept := cart[:0]
	for _, item := range cart {
		if item.ProductId != removed.ProductId {
			kept = append(kept, item)
		}
	}
	return kept
}

// checkout runs the checkout flow and reports whether a purchase completed.
func (s *Simulator) checkout(user User, cart []cartItem, pattern float64) bool {
	total := 0.0
	for _, item := range cart {
		total += float64(item.Quantity) * item.Price
	}
	total = math.Round(total*100) / 100
	orderId := uuid.NewString()

	s.logEvent(model.EventCheckoutInitiated, user, map[string]interface{}{
		"order_id":        orderId,
		"total_amount":    total,
		"number_of_items": len(cart),
	})
	s.sleep(500*time.Millisecond, 1500*time.Millisecond)
	s.logEvent(model.EventPageView, user, map[string]interface{}{"page_url": "/checkout"})

	if s.rng.Float64() < 0.05+pattern*0.03 {
		codes := []string{"PAYMENT_FAILED", "CHECKOUT_ERROR", "SERVER_TIMEOUT"}
		s.logError(user, errorByCode(codes[s.rng.Intn(len(codes))]), map[string]interface{}{
			"order_id": orderId,
		})
		s.sleep(100*time.Millisecond, 300*time.Millisecond)
		s.logEvent(model.EventCartAbandoned, user, map[string]interface{}{
			"reason":   "checkout_error",
			"order_id": orderId,
		})
		s.sleep(100*time.Millisecond, 500*time.Millisecond)
		return false
	}

	items := make([]map[string]interface{}, len(cart))
	for i, item := range cart {
		items[i] = map[string]interface{}{
			"product_id": item.ProductId,
			"quantity":   item.Quantity,
			"price":      item.Price,
		}
	}
	s.logEvent(model.EventPurchase, user, map[string]interface{}{
		"order_id":       orderId,
		"total_amount":   total,
		"items":          items,
		"payment_method": paymentMethods[s.rng.Intn(len(paymentMethods))],
	})
	s.sleep(100*time.Millisecond, 500*time.Millisecond)
	s.logEvent(model.EventPageView, user, map[string]interface{}{
		"page_url": "/order-confirmation/" + orderId,
	})
	return true
}

// RunSimulation replays journeys for the given number of days, scaling the
// journeys per hour by the traffic pattern.
func (s *Simulator) RunSimulation(ctx context.Context, numDays int) error {
	s.logger.Info("Starting simulation", zap.Int("days", numDays))
	for day := 1; day <= numDays; day++ {
		for hour := 0; hour < 24; hour++ {
			journeys := int(baseJourneysPerHour * trafficPatterns[hour])
			if journeys < 1 {
				journeys = 1
			}
			s.logger.Info("Simulating hour",
				zap.Int("day", day),
				zap.Int("hour", hour),
				zap.Int("journeys", journeys),
			)
			for i := 0; i < journeys; i++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.SimulateJourney(hour)
				s.sleep(100*time.Millisecond, 500*time.Millisecond)
			}
			s.sleep(500*time.Millisecond, 2*time.Second)
		}
	}
	s.logger.Info("Simulation finished")
	return nil
}
