package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"parkbay/config"
	"parkbay/internal/domain"
	"parkbay/internal/models"
	"parkbay/internal/repository"
	"parkbay/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memData backs the in-memory repositories shared by the service tests. A
// Store assembled from these has no database, so Transaction runs the
// callback inline.
type memData struct {
	users        map[uint]*models.User
	carparks     map[uint]*models.CarPark
	bays         map[uint]*models.Bay
	reservations map[uint]*models.Reservation
	payments     map[uint]*models.Payment
	refunds      map[uint]*models.Refund
	nextID       uint

	paymentCreateErr     error
	reservationCreateErr error

	purgedCarParkCutoff *time.Time
	purgedUserCutoff    *time.Time
}

func newMemStore() (*repository.Store, *memData) {
	d := &memData{
		users:        map[uint]*models.User{},
		carparks:     map[uint]*models.CarPark{},
		bays:         map[uint]*models.Bay{},
		reservations: map[uint]*models.Reservation{},
		payments:     map[uint]*models.Payment{},
		refunds:      map[uint]*models.Refund{},
	}
	return &repository.Store{
		Users:        &memUsers{d},
		CarParks:     &memCarParks{d},
		Bays:         &memBays{d},
		Reservations: &memReservations{d},
		Payments:     &memPayments{d},
		Refunds:      &memRefunds{d},
		Maintenance:  &memMaintenance{d},
	}, d
}

func (d *memData) id() uint {
	d.nextID++
	return d.nextID
}

type memUsers struct{ d *memData }

func (m *memUsers) Create(u *models.User) error {
	u.ID = m.d.id()
	cp := *u
	m.d.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(id uint) (*models.User, error) {
	u, ok := m.d.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) Update(u *models.User) error {
	cp := *u
	m.d.users[u.ID] = &cp
	return nil
}

func (m *memUsers) SoftDelete(id uint) error {
	delete(m.d.users, id)
	return nil
}

type memCarParks struct{ d *memData }

func (m *memCarParks) Create(cp *models.CarPark) error {
	cp.ID = m.d.id()
	c := *cp
	m.d.carparks[cp.ID] = &c
	return nil
}

func (m *memCarParks) GetByID(id uint) (*models.CarPark, error) {
	cp, ok := m.d.carparks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *cp
	return &c, nil
}

func (m *memCarParks) Update(cp *models.CarPark) error {
	c := *cp
	m.d.carparks[cp.ID] = &c
	return nil
}

func (m *memCarParks) SoftDelete(id uint) error {
	delete(m.d.carparks, id)
	return nil
}

func (m *memCarParks) ListByOwner(userID uint) ([]models.CarPark, error) {
	var out []models.CarPark
	for _, cp := range m.d.carparks {
		if cp.UserID == userID {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (m *memCarParks) Search(query string) ([]models.CarPark, error) {
	var out []models.CarPark
	for _, cp := range m.d.carparks {
		if query == "" || strings.Contains(cp.Postcode, query) || strings.Contains(cp.City, query) {
			out = append(out, *cp)
		}
	}
	return out, nil
}

type memBays struct{ d *memData }

func (m *memBays) CreateBatch(bays []models.Bay) error {
	for i := range bays {
		bays[i].ID = m.d.id()
		b := bays[i]
		m.d.bays[b.ID] = &b
	}
	return nil
}

func (m *memBays) GetByID(id uint) (*models.Bay, error) {
	b, ok := m.d.bays[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBays) ListByCarPark(carparkID uint) ([]models.Bay, error) {
	var out []models.Bay
	for _, b := range m.d.bays {
		if b.CarParkID == carparkID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BayNumber < out[j].BayNumber })
	return out, nil
}

func (m *memBays) Update(b *models.Bay) error {
	cp := *b
	m.d.bays[b.ID] = &cp
	return nil
}

func (m *memBays) SetAvailability(id uint, available bool) error {
	b, ok := m.d.bays[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.IsAvailable = available
	return nil
}

type memReservations struct{ d *memData }

func (m *memReservations) Create(res *models.Reservation) error {
	if m.d.reservationCreateErr != nil {
		return m.d.reservationCreateErr
	}
	res.ID = m.d.id()
	cp := *res
	m.d.reservations[res.ID] = &cp
	return nil
}

func (m *memReservations) GetByID(id uint) (*models.Reservation, error) {
	r, ok := m.d.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReservations) GetByIDForUpdate(id uint) (*models.Reservation, error) {
	return m.GetByID(id)
}

func (m *memReservations) GetByPaymentID(paymentID uint) (*models.Reservation, error) {
	for _, r := range m.d.reservations {
		if r.PaymentID != nil && *r.PaymentID == paymentID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memReservations) ListByUser(userID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range m.d.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReservations) ListByCarPark(carparkID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range m.d.reservations {
		if r.CarParkID == carparkID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReservations) Update(res *models.Reservation) error {
	cp := *res
	m.d.reservations[res.ID] = &cp
	return nil
}

func (m *memReservations) CountOverlapping(bayID uint, start, end time.Time) (int64, error) {
	var n int64
	for _, r := range m.d.reservations {
		if r.BayID != bayID || r.Status == domain.ReservationCancelled {
			continue
		}
		if r.StartTime.Before(end) && r.EndTime.After(start) {
			n++
		}
	}
	return n, nil
}

func (m *memReservations) CountOverlappingForUpdate(bayID uint, start, end time.Time) (int64, error) {
	return m.CountOverlapping(bayID, start, end)
}

func (m *memReservations) FindExpired(now time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range m.d.reservations {
		switch r.Status {
		case domain.ReservationCancelled, domain.ReservationRefunded, domain.ReservationCompleted:
			continue
		}
		if r.EndTime.Before(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReservations) MarkCompleted(ids []uint) error {
	for _, id := range ids {
		r, ok := m.d.reservations[id]
		if !ok {
			continue
		}
		switch r.Status {
		case domain.ReservationCancelled, domain.ReservationRefunded, domain.ReservationCompleted:
			continue
		}
		r.Status = domain.ReservationCompleted
	}
	return nil
}

func (m *memReservations) CountActive(bayID uint, t time.Time) (int64, error) {
	var n int64
	for _, r := range m.d.reservations {
		if r.BayID != bayID {
			continue
		}
		switch r.Status {
		case domain.ReservationCancelled, domain.ReservationRefunded:
			continue
		}
		if !r.StartTime.After(t) && r.EndTime.After(t) {
			n++
		}
	}
	return n, nil
}

type memPayments struct{ d *memData }

func (m *memPayments) Create(p *models.Payment) error {
	if m.d.paymentCreateErr != nil {
		return m.d.paymentCreateErr
	}
	p.ID = m.d.id()
	cp := *p
	m.d.payments[p.ID] = &cp
	return nil
}

func (m *memPayments) GetByID(id uint) (*models.Payment, error) {
	p, ok := m.d.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByIDForUpdate(id uint) (*models.Payment, error) {
	return m.GetByID(id)
}

func (m *memPayments) ListByUser(userID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.d.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPayments) Update(p *models.Payment) error {
	cp := *p
	m.d.payments[p.ID] = &cp
	return nil
}

type memRefunds struct{ d *memData }

func (m *memRefunds) Create(rf *models.Refund) error {
	rf.ID = m.d.id()
	cp := *rf
	m.d.refunds[rf.ID] = &cp
	return nil
}

func (m *memRefunds) GetByID(id uint) (*models.Refund, error) {
	rf, ok := m.d.refunds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rf
	return &cp, nil
}

func (m *memRefunds) GetByIDForUpdate(id uint) (*models.Refund, error) {
	return m.GetByID(id)
}

func (m *memRefunds) Update(rf *models.Refund) error {
	cp := *rf
	m.d.refunds[rf.ID] = &cp
	return nil
}

func (m *memRefunds) ListByRequester(userID uint) ([]models.Refund, error) {
	var out []models.Refund
	for _, rf := range m.d.refunds {
		if rf.CreatedBy == userID {
			out = append(out, *rf)
		}
	}
	return out, nil
}

func (m *memRefunds) ListByStatus(status string) ([]models.Refund, error) {
	var out []models.Refund
	for _, rf := range m.d.refunds {
		if status == "" || rf.Status == status {
			out = append(out, *rf)
		}
	}
	return out, nil
}

func (m *memRefunds) GetOpenByPayment(paymentID uint) (*models.Refund, error) {
	for _, rf := range m.d.refunds {
		if rf.PaymentID != paymentID {
			continue
		}
		if rf.Status == domain.RefundRequested || rf.Status == domain.RefundReviewing {
			cp := *rf
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memMaintenance struct{ d *memData }

func (m *memMaintenance) PurgeCarParksDeletedBefore(cutoff time.Time) (int64, error) {
	m.d.purgedCarParkCutoff = &cutoff
	return 0, nil
}

func (m *memMaintenance) PurgeUsersDeletedBefore(cutoff time.Time) (int64, error) {
	m.d.purgedUserCutoff = &cutoff
	return 0, nil
}

// fakeGateway records calls and returns scripted results.
type fakeGateway struct {
	captureErr error
	refundErr  error
	acctErr    error
	acct       payment.AccountStatus

	captures []payment.ChargeRequest
	refunded []payment.RefundRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		acct: payment.AccountStatus{DetailsSubmitted: true, ChargesEnabled: true, PayoutsEnabled: true},
	}
}

func (g *fakeGateway) Capture(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captures = append(g.captures, req)
	return &payment.ChargeResult{
		ID:         fmt.Sprintf("ch_test_%d", len(g.captures)),
		Paid:       true,
		ReceiptURL: "https://pay.example/receipt",
	}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunded = append(g.refunded, req)
	return &payment.RefundResult{
		ID:         fmt.Sprintf("re_test_%d", len(g.refunded)),
		ReceiptURL: "https://pay.example/refund-receipt",
	}, nil
}

func (g *fakeGateway) AccountStatus(ctx context.Context, accountID string) (*payment.AccountStatus, error) {
	if g.acctErr != nil {
		return nil, g.acctErr
	}
	acct := g.acct
	return &acct, nil
}

func testBookingConfig() *config.BookingConfig {
	return &config.BookingConfig{
		ProcessingFeePercent: 1.5,
		ProcessingFeePence:   20,
		PlatformFeePercent:   10,
		AutoRefundWindow:     24 * time.Hour,
	}
}

// seedMarketplace creates an onboarded owner with a one-bay car park and a
// renter, and returns (renterID, bayID).
func seedMarketplace(d *memData) (renterID, bayID uint) {
	acct := "acct_owner"
	owner := &models.User{Email: "owner@example.com", Role: domain.RoleUser, StripeAccountID: &acct}
	owner.ID = d.id()
	d.users[owner.ID] = owner

	cp := &models.CarPark{UserID: owner.ID, AddressLine1: "1 Market St", City: "Bristol", Postcode: "BS1 1AA"}
	cp.ID = d.id()
	d.carparks[cp.ID] = cp

	bay := &models.Bay{CarParkID: cp.ID, BayNumber: 1, VehicleSize: domain.VehicleSizeMedium, IsAvailable: true}
	bay.ID = d.id()
	d.bays[bay.ID] = bay

	renter := &models.User{Email: "renter@example.com", Role: domain.RoleUser}
	renter.ID = d.id()
	d.users[renter.ID] = renter

	return renter.ID, bay.ID
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
