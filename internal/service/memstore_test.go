package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/repository/common"
)

// memDB — in-memory хранилище, повторяющее семантику SQL репозиториев.
type memDB struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*models.User
	profiles      map[uuid.UUID]*models.ProfessionalProfile
	gigs          map[uuid.UUID]*models.Gig
	comments      map[uuid.UUID]*models.GigComment
	bookings      map[uuid.UUID]*models.Booking
	notifications map[uuid.UUID]*models.Notification

	failProfileInsert bool
}

func newMemDB() *memDB {
	return &memDB{
		clock:         time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:         make(map[uuid.UUID]*models.User),
		profiles:      make(map[uuid.UUID]*models.ProfessionalProfile),
		gigs:          make(map[uuid.UUID]*models.Gig),
		comments:      make(map[uuid.UUID]*models.GigComment),
		bookings:      make(map[uuid.UUID]*models.Booking),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

// tick возвращает монотонно растущее время, чтобы сортировка была детерминированной.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

type memUsers struct{ *memDB }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertUser(user)
}

func (r memUsers) insertUser(user *models.User) error {
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.Email = email
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r memUsers) CreateProfessional(_ context.Context, user *models.User, profile *models.ProfessionalProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failProfileInsert {
		return errors.New("insert professional_profiles: connection reset")
	}
	if err := r.insertUser(user); err != nil {
		return err
	}
	profile.UserID = user.ID
	profile.UpdatedAt = r.clock
	stored := *profile
	r.profiles[user.ID] = &stored
	return nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetProfile(_ context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memUsers) UpdateAccount(_ context.Context, user *models.User, profile *models.ProfessionalProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	var p *models.ProfessionalProfile
	if profile != nil {
		if p, ok = r.profiles[profile.UserID]; !ok {
			return repository.ErrUserNotFound
		}
	}

	u.Name, u.Phone, u.City, u.Address = user.Name, user.Phone, user.City, user.Address
	u.UpdatedAt = r.tick()
	user.UpdatedAt = u.UpdatedAt
	if p != nil {
		p.Category, p.Skills, p.Bio, p.IsAvailable = profile.Category, profile.Skills, profile.Bio, profile.IsAvailable
	}
	return nil
}

func (r memUsers) UpdateProfileImage(_ context.Context, userID uuid.UUID, image string) (*string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	previous := u.ProfileImage
	u.ProfileImage = &image
	return previous, nil
}

func (r memUsers) card(u *models.User) models.ProfessionalCard {
	p := r.profiles[u.ID]
	gigCount := 0
	for _, g := range r.gigs {
		if g.ProfessionalID == u.ID {
			gigCount++
		}
	}
	return models.ProfessionalCard{
		ID: u.ID, Name: u.Name, City: u.City, ProfileImage: u.ProfileImage,
		Category: p.Category, Skills: p.Skills, Bio: p.Bio,
		IsAvailable: p.IsAvailable, IsVerified: p.IsVerified,
		GigCount: gigCount, CreatedAt: u.CreatedAt,
	}
}

func (r memUsers) SearchProfessionals(_ context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cards := []models.ProfessionalCard{}
	for _, u := range r.users {
		if u.Role != valueobject.RoleProfessional || u.Status != valueobject.AccountStatusActive {
			continue
		}
		p, ok := r.profiles[u.ID]
		if !ok {
			continue
		}
		if params.City != "" && (u.City == nil || !strings.EqualFold(*u.City, params.City)) {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(params.Query)) {
			continue
		}
		cards = append(cards, r.card(u))
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Name != cards[j].Name {
			return cards[i].Name < cards[j].Name
		}
		return cards[i].ID.String() < cards[j].ID.String()
	})

	if params.Offset >= len(cards) {
		return []models.ProfessionalCard{}, nil
	}
	cards = cards[params.Offset:]
	if params.Limit < len(cards) {
		cards = cards[:params.Limit]
	}
	return cards, nil
}

func (r memUsers) GetActiveProfessional(_ context.Context, id uuid.UUID) (*models.ProfessionalCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != valueobject.RoleProfessional || u.Status != valueobject.AccountStatusActive {
		return nil, repository.ErrUserNotFound
	}
	card := r.card(u)
	return &card, nil
}

func (r memUsers) ListPendingProfessionals(_ context.Context) ([]models.PendingProfessional, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PendingProfessional
	for _, u := range r.users {
		if u.Role == valueobject.RoleProfessional && u.Status == valueobject.AccountStatusPending {
			result = append(result, models.PendingProfessional{User: *u, Profile: *r.profiles[u.ID]})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].User.CreatedAt.Before(result[j].User.CreatedAt) })
	return result, nil
}

func (r memUsers) ListUsers(_ context.Context, params models.UserListParams) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []models.User{}
	for _, u := range r.users {
		if params.Role != "" && string(u.Role) != params.Role {
			continue
		}
		if params.Status != "" && string(u.Status) != params.Status {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r memUsers) DecidePending(_ context.Context, userID uuid.UUID, to valueobject.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.Role != valueobject.RoleProfessional || u.Status != valueobject.AccountStatusPending {
		return common.ErrConflict
	}
	u.Status = to
	if to == valueobject.AccountStatusActive {
		now := r.tick()
		u.ApprovedAt = &now
		r.profiles[userID].IsVerified = true
	}
	return nil
}

type memGigs struct{ *memDB }

func (r memGigs) Create(_ context.Context, gig *models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gig.ID = uuid.New()
	gig.CreatedAt = r.tick()
	gig.UpdatedAt = gig.CreatedAt
	stored := *gig
	r.gigs[gig.ID] = &stored
	return nil
}

func (r memGigs) GetByID(_ context.Context, id uuid.UUID) (*models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[id]
	if !ok {
		return nil, repository.ErrGigNotFound
	}
	cp := *g
	return &cp, nil
}

func (r memGigs) ListByProfessional(_ context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gigs := []models.Gig{}
	for _, g := range r.gigs {
		if g.ProfessionalID == professionalID {
			gigs = append(gigs, *g)
		}
	}
	sort.Slice(gigs, func(i, j int) bool { return gigs[i].CreatedAt.After(gigs[j].CreatedAt) })
	return gigs, nil
}

func (r memGigs) ListByActiveProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	r.mu.Lock()
	u, ok := r.users[professionalID]
	active := ok && u.Role == valueobject.RoleProfessional && u.Status == valueobject.AccountStatusActive
	r.mu.Unlock()
	if !active {
		return []models.Gig{}, nil
	}
	return r.ListByProfessional(ctx, professionalID)
}

func (r memGigs) Update(_ context.Context, gig *models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[gig.ID]
	if !ok {
		return repository.ErrGigNotFound
	}
	g.Title, g.Description, g.Price = gig.Title, gig.Description, gig.Price
	return nil
}

func (r memGigs) UpdateImage(_ context.Context, gig *models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[gig.ID]
	if !ok {
		return repository.ErrGigNotFound
	}
	g.Image = gig.Image
	return nil
}

func (r memGigs) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gigs[id]; !ok {
		return repository.ErrGigNotFound
	}
	for cid, c := range r.comments {
		if c.GigID == id {
			delete(r.comments, cid)
		}
	}
	delete(r.gigs, id)
	return nil
}

type memComments struct{ *memDB }

func (r memComments) Create(_ context.Context, comment *models.GigComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.New()
	comment.CreatedAt = r.tick()
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r memComments) ListByGig(_ context.Context, gigID uuid.UUID) ([]models.GigCommentView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := []models.GigCommentView{}
	for _, c := range r.comments {
		if c.GigID != gigID {
			continue
		}
		author := r.users[c.AuthorID]
		views = append(views, models.GigCommentView{
			ID: c.ID, GigID: c.GigID, Body: c.Body, CreatedAt: c.CreatedAt,
			Author: models.UserSummary{ID: author.ID, Name: author.Name, City: author.City, ProfileImage: author.ProfileImage},
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) })
	return views, nil
}

type memBookings struct{ *memDB }

func (r memBookings) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.New()
	booking.CreatedAt = r.tick()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r memBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r memBookings) sorted(pred func(*models.Booking) bool) []models.Booking {
	var result []models.Booking
	for _, b := range r.bookings {
		if pred(b) {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r memBookings) ListForClient(_ context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := []models.ClientBookingView{}
	for _, b := range r.sorted(func(b *models.Booking) bool { return b.ClientID == clientID }) {
		pro := r.users[b.ProfessionalID]
		views = append(views, models.ClientBookingView{
			Booking: b,
			Professional: models.ProfessionalIdentity{
				UserSummary: models.UserSummary{ID: pro.ID, Name: pro.Name, City: pro.City, ProfileImage: pro.ProfileImage},
				Category:    r.profiles[pro.ID].Category,
			},
		})
	}
	return views, nil
}

// ListForProfessional всегда отдаёт телефон: скрытие проверяется на уровне сервиса.
func (r memBookings) ListForProfessional(_ context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := []models.ProfessionalBookingView{}
	for _, b := range r.sorted(func(b *models.Booking) bool { return b.ProfessionalID == professionalID }) {
		client := r.users[b.ClientID]
		phone := client.Phone
		views = append(views, models.ProfessionalBookingView{
			Booking: b,
			Client: models.ClientIdentity{
				UserSummary: models.UserSummary{ID: client.ID, Name: client.Name, City: client.City, ProfileImage: client.ProfileImage},
				Phone:       &phone,
			},
		})
	}
	return views, nil
}

func (r memBookings) UpdateStatus(_ context.Context, id, professionalID uuid.UUID, to valueobject.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.ProfessionalID != professionalID || b.Status != valueobject.BookingStatusPending {
		return nil, common.ErrConflict
	}
	b.Status = to
	b.UpdatedAt = r.tick()
	cp := *b
	return &cp, nil
}

type memAdmin struct{ *memDB }

func (r memAdmin) DeleteUserCascade(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	var files []string
	add := func(ref *string) {
		if ref != nil && *ref != "" {
			files = append(files, *ref)
		}
	}

	for id, n := range r.notifications {
		if n.UserID == userID {
			delete(r.notifications, id)
		}
	}
	for id, b := range r.bookings {
		if b.ClientID == userID || b.ProfessionalID == userID {
			add(b.Image)
			delete(r.bookings, id)
		}
	}
	for id, c := range r.comments {
		if c.AuthorID == userID {
			delete(r.comments, id)
		}
	}
	if u.Role == valueobject.RoleProfessional {
		for gid, g := range r.gigs {
			if g.ProfessionalID != userID {
				continue
			}
			for cid, c := range r.comments {
				if c.GigID == gid {
					delete(r.comments, cid)
				}
			}
			add(g.Image)
			delete(r.gigs, gid)
		}
		if p, ok := r.profiles[userID]; ok {
			add(&p.IDDocument)
			add(&p.FeeProof)
			delete(r.profiles, userID)
		}
	}
	add(u.ProfileImage)
	delete(r.users, userID)
	return files, nil
}

func (r memAdmin) Stats(_ context.Context) (*models.PlatformStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s models.PlatformStats
	for _, u := range r.users {
		switch {
		case u.Role == valueobject.RoleClient:
			s.Clients++
		case u.Role == valueobject.RoleProfessional:
			s.Professionals++
			switch u.Status {
			case valueobject.AccountStatusActive:
				s.ActiveProfessionals++
			case valueobject.AccountStatusPending:
				s.PendingProfessionals++
			case valueobject.AccountStatusRejected:
				s.RejectedProfessionals++
			}
		}
	}
	s.Gigs = len(r.gigs)
	s.Comments = len(r.comments)
	for _, b := range r.bookings {
		s.Bookings++
		switch b.Status {
		case valueobject.BookingStatusPending:
			s.PendingBookings++
		case valueobject.BookingStatusAccepted:
			s.AcceptedBookings++
		case valueobject.BookingStatusRejected:
			s.RejectedBookings++
		}
	}
	return &s, nil
}

type memNotifications struct{ *memDB }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = r.tick()
	stored := *n
	r.notifications[n.ID] = &stored
	return nil
}

func (r memNotifications) List(_ context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if offset >= len(result) {
		return []models.Notification{}, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r memNotifications) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (r memNotifications) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r memNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
