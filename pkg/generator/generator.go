package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"go.uber.org/zap"
)

type User struct {
	UserId   string
	Username string
	Email    string
	Location string
}

type Product struct {
	ProductId string
	Name      string
	Category  string
	Price     float64
	Stock     int
}

type ErrorType struct {
	Code    string
	Message string
}

var countries = []string{"USA", "Canada", "France", "Germany", "UK", "Australia", "Japan", "Brazil", "India"}

var categories = []string{"Electronics", "Books", "Clothing", "Home & Kitchen", "Sports"}

var searchTerms = []string{"laptop", "book", "shirt", "kitchen", "ball", "smartwatch", "headphones"}

var paymentMethods = []string{"credit_card", "paypal", "bank_transfer"}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.3 Safari/605.1.15",
	"Mozilla/5.0 (Linux; Android 10; SM-G973F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 15_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/100.0.4896.75 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:98.0) Gecko/20100101 Firefox/98.0",
	"Mozilla/5.0 (iPad; CPU OS 13_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/83.0.4103.88 Mobile/15E148 Safari/604.1",
}

var errorTypes = []ErrorType{
	{Code: "LOGIN_FAILED", Message: "Invalid credentials or server error during login."},
	{Code: "PAYMENT_FAILED", Message: "Payment gateway declined transaction or insufficient funds."},
	{Code: "PRODUCT_NOT_FOUND", Message: "Requested product does not exist."},
	{Code: "OUT_OF_STOCK", Message: "Product is out of stock and cannot be added to cart/purchased."},
	{Code: "CHECKOUT_ERROR", Message: "General error during checkout processing."},
	{Code: "SERVER_TIMEOUT", Message: "API request timed out."},
	{Code: "DATABASE_ERROR", Message: "Database connection failed or query error."},
	{Code: "INVALID_INPUT", Message: "User provided invalid data in a form."},
}

// trafficPatterns holds a journey multiplier per hour of the day: quiet
// nights, a daytime plateau and an evening peak.
var trafficPatterns = [24]float64{
	0.2, 0.1, 0.1, 0.1, 0.2, 0.3,
	0.5, 0.7, 0.9, 1.0,
	1.2, 1.3, 1.1, 1.0, 1.0, 1.1, 1.2,
	1.5, 1.8, 2.0, 1.7, 1.4, 1.0, 0.7,
}

const baseJourneysPerHour = 5

// Simulator replays e-commerce user journeys as structured log events.
type Simulator struct {
	users    []User
	products []Product
	emitter  Emitter
	rng      *rand.Rand
	logger   *zap.Logger
	sleep    func(min, max time.Duration)
	now      func() time.Time
}

type Option func(*Simulator)

// WithRand fixes the random source, for reproducible runs.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithoutDelays disables the human-paced sleeps between events.
func WithoutDelays() Option {
	return func(s *Simulator) { s.sleep = func(time.Duration, time.Duration) {} }
}

// WithClock fixes the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(emitter Emitter, logger *zap.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		emitter: emitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
		now:     time.Now,
	}
	s.sleep = func(min, max time.Duration) {
		time.Sleep(min + time.Duration(s.rng.Int63n(int64(max-min))))
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users = s.generateUsers(100)
	s.products = s.generateProducts(50)
	return s
}

func (s *Simulator) generateUsers(count int) []User {
	users := make([]User, count)
	for i := range users {
		users[i] = User{
			UserId:   uuid.NewString(),
			Username: fmt.Sprintf("user_%d", i),
			Email:    fmt.Sprintf("user_%d@example.com", i),
			Location: countries[s.rng.Intn(len(countries))],
		}
	}
	return users
}

func (s *Simulator) generateProducts(count int) []Product {
	products := make([]Product, count)
	for i := range products {
		products[i] = Product{
			ProductId: uuid.NewString(),
			Name:      fmt.Sprintf("Product %d", i),
			Category:  categories[s.rng.Intn(len(categories))],
			Price:     10.0 + s.rng.Float64()*990.0,
			Stock:     s.rng.Intn(201),
		}
	}
	return products
}

func (s *Simulator) generateIp() string {
	return fmt.Sprintf("%d.%d.%d.%d",
		1+s.rng.Intn(254), s.rng.Intn(255), s.rng.Intn(255), 1+s.rng.Intn(254))
}

func (s *Simulator) logEvent(eventType string, user User, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["user_id"] = user.UserId
	s.emitter.Emit(model.LogEntry{
		Timestamp: s.now(),
		EventType: eventType,
		SessionId: uuid.NewString(),
		UserId:    user.UserId,
		IpAddress: s.generateIp(),
		UserAgent: userAgents[s.rng.Intn(len(userAgents))],
		Location:  user.Location,
		Data:      data,
	})
}

func (s *Simulator) logError(user User, err ErrorType, extra map[string]interface{}) {
	data := map[string]interface{}{
		"error_code": err.Code,
		"message":    err.Message,
	}
	for k, v := range extra {
		data[k] = v
	}
	s.logEvent(model.EventError, user, data)
}

func (s *Simulator) randomError() ErrorType {
	return errorTypes[s.rng.Intn(len(errorTypes))]
}

func errorByCode(code string) ErrorType {
	for _, e := range errorTypes {
		if e.Code == code {
			return e
		}
	}
	return ErrorType{Code: code, Message: code}
}
