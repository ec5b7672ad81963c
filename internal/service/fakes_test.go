package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("user-%d", r.seq)
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = r.nextID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) && !user.Deleted() {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role && !user.Deleted() {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) ListStaffWithDepartment(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == domain.RoleStaff && user.Department != "" && !user.Deleted() {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.Deleted() {
		return pgx.ErrNoRows
	}
	now := time.Now()
	user.DeletedAt = &now
	return nil
}

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
	updErr  error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		r.seq++
		ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updErr != nil {
		return r.updErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticketMatchesFilter(ticket, filter) {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func ticketMatchesFilter(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
		return false
	}
	if filter.AssignedStaffID != nil && ticket.AssignedStaffID != *filter.AssignedStaffID {
		return false
	}
	if filter.Unassigned && ticket.Category != "" {
		return false
	}
	if filter.AssignedOnly && ticket.Category == "" {
		return false
	}
	if filter.Department != nil && domain.NormalizeKey(ticket.AssignedDepartment) != domain.NormalizeKey(*filter.Department) {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func (r *memTicketRepo) CountByAssignee(_ context.Context, staffIDs []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(staffIDs))
	for _, id := range staffIDs {
		wanted[id] = true
	}
	counts := make(map[string]int)
	for _, ticket := range r.tickets {
		if wanted[ticket.AssignedStaffID] {
			counts[ticket.AssignedStaffID]++
		}
	}
	return counts, nil
}

func (r *memTicketRepo) CountByOwner(_ context.Context, ownerIDs []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		wanted[id] = true
	}
	counts := make(map[string]int)
	for _, ticket := range r.tickets {
		if wanted[ticket.OwnerID] {
			counts[ticket.OwnerID]++
		}
	}
	return counts, nil
}

func (r *memTicketRepo) CountByCategory(_ context.Context, filter repository.TicketFilter) ([]repository.CategoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCategory := make(map[string]int)
	for _, ticket := range r.tickets {
		if !ticketMatchesFilter(ticket, filter) {
			continue
		}
		byCategory[ticket.Category]++
	}
	keys := make([]string, 0, len(byCategory))
	for key := range byCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	counts := make([]repository.CategoryCount, 0, len(keys))
	for _, key := range keys {
		counts = append(counts, repository.CategoryCount{Category: key, Count: byCategory[key]})
	}
	return counts, nil
}

func (r *memTicketRepo) CountByStatus(_ context.Context, filter repository.TicketFilter) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := make(map[domain.TicketStatus]int)
	for _, ticket := range r.tickets {
		if !ticketMatchesFilter(ticket, filter) {
			continue
		}
		byStatus[ticket.Status]++
	}
	counts := make([]repository.StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		counts = append(counts, repository.StatusCount{Status: status, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages []domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (r *memMessageRepo) DeleteByTicket(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.TicketID != ticketID {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	seq           int
	notifications []domain.Notification
	createErr     error
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, notif *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	notif.ID = fmt.Sprintf("notif-%d", r.seq)
	notif.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notif)
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			clone := r.notifications[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memNotificationRepo) List(_ context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, notif := range r.notifications {
		if filter.StaffID != "" && notif.StaffID != filter.StaffID {
			continue
		}
		if filter.UnreadOnly && notif.Read {
			continue
		}
		if filter.Since != nil && !notif.CreatedAt.After(*filter.Since) {
			continue
		}
		result = append(result, notif)
	}
	return result, nil
}

func (r *memNotificationRepo) Count(ctx context.Context, filter repository.NotificationFilter) (int, error) {
	items, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			now := time.Now()
			r.notifications[i].Read = true
			r.notifications[i].ReadAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memNotificationRepo) MarkAllReadForStaff(_ context.Context, staffID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for i := range r.notifications {
		if r.notifications[i].StaffID == staffID && !r.notifications[i].Read {
			r.notifications[i].Read = true
			r.notifications[i].ReadAt = &now
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkReadForTicket(_ context.Context, ticketID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	seen := make(map[string]bool)
	var staffIDs []string
	for i := range r.notifications {
		if r.notifications[i].TicketID == ticketID && !r.notifications[i].Read {
			r.notifications[i].Read = true
			r.notifications[i].ReadAt = &now
			if !seen[r.notifications[i].StaffID] {
				seen[r.notifications[i].StaffID] = true
				staffIDs = append(staffIDs, r.notifications[i].StaffID)
			}
		}
	}
	return staffIDs, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memAuditRepo struct {
	mu        sync.Mutex
	seq       int
	entries   []domain.TicketAudit
	createErr error
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Create(_ context.Context, entry *domain.TicketAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	entry.ID = fmt.Sprintf("audit-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketAudit
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories []domain.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{}
}

func (r *memCategoryRepo) Create(_ context.Context, cat *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cat.ID = fmt.Sprintf("cat-%d", r.seq)
	cat.CreatedAt = time.Now()
	r.categories = append(r.categories, *cat)
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].ID == id {
			clone := r.categories[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCategoryRepo) FindByCodeOrName(_ context.Context, code, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		cat := r.categories[i]
		if cat.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(cat.Code, code) || strings.EqualFold(cat.Name, name) {
			clone := cat
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) ListActive(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Category
	for _, cat := range r.categories {
		if cat.DeletedAt == nil {
			result = append(result, cat)
		}
	}
	return result, nil
}

func (r *memCategoryRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].ID == id && r.categories[i].DeletedAt == nil {
			now := time.Now()
			r.categories[i].DeletedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens []repository.PasswordResetToken
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{}
}

func (r *memResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = fmt.Sprintf("reset-%d", r.seq)
	token.CreatedAt = time.Now()
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *memResetRepo) GetByTokenHash(_ context.Context, hash string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tokens {
		if r.tokens[i].TokenHash == hash {
			clone := r.tokens[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tokens {
		if r.tokens[i].ID == id {
			now := time.Now()
			r.tokens[i].UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func notificationFilterAll() repository.NotificationFilter {
	return repository.NotificationFilter{}
}

func notificationFilterWithUnread() repository.NotificationFilter {
	return repository.NotificationFilter{UnreadOnly: true}
}

func ticketFilterAll() repository.TicketFilter {
	return repository.TicketFilter{}
}

// captureDispatcher records published events and still delivers them to
// subscribers, so triggers can be asserted end to end.
type captureDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	listeners map[events.EventType][]events.EventHandler
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{listeners: make(map[events.EventType][]events.EventHandler)}
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.listeners[event.Type]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *captureDispatcher) eventsOfType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
