package service

import (
	"strings"
	"sync"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uint]models.User{}}
}

func (m *memoryUserRepo) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) GetByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) GetByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copy := user
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) List(filter models.ListFilter) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, user := range m.users {
		if filter.TenantName != "" && user.TenantName != filter.TenantName {
			continue
		}
		if filter.Role != "" && string(user.Role) != filter.Role {
			continue
		}
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (m *memoryUserRepo) Update(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) UpdateRole(id uint, role authorization.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) CountByRole(role authorization.UserRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, user := range m.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

type memoryTenantRepo struct {
	nextID  uint
	tenants map[uint]models.Tenant
}

func newMemoryTenantRepo(tenants ...models.Tenant) *memoryTenantRepo {
	repo := &memoryTenantRepo{tenants: map[uint]models.Tenant{}}
	for _, tenant := range tenants {
		t := tenant
		_ = repo.Create(&t)
	}
	return repo
}

func (m *memoryTenantRepo) Create(tenant *models.Tenant) error {
	for _, existing := range m.tenants {
		if existing.Name == tenant.Name || existing.Token == tenant.Token {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	tenant.ID = m.nextID
	m.tenants[tenant.ID] = *tenant
	return nil
}

func (m *memoryTenantRepo) find(match func(models.Tenant) bool) (*models.Tenant, error) {
	for _, tenant := range m.tenants {
		if match(tenant) {
			copy := tenant
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryTenantRepo) GetByID(id uint) (*models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.ID == id })
}

func (m *memoryTenantRepo) GetByName(name string) (*models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.Name == name })
}

func (m *memoryTenantRepo) GetByToken(token string) (*models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.Token == token })
}

func (m *memoryTenantRepo) GetAll() ([]models.Tenant, error) {
	out := make([]models.Tenant, 0, len(m.tenants))
	for _, tenant := range m.tenants {
		out = append(out, tenant)
	}
	return out, nil
}

func (m *memoryTenantRepo) UpdateToken(id uint, token string) error {
	tenant, ok := m.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	tenant.Token = token
	m.tenants[id] = tenant
	return nil
}

func (m *memoryTenantRepo) Delete(id uint) error {
	if _, ok := m.tenants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tenants, id)
	return nil
}

type memoryTemplateRepo struct {
	nextID    uint
	templates map[uint]models.Template
}

func newMemoryTemplateRepo() *memoryTemplateRepo {
	return &memoryTemplateRepo{templates: map[uint]models.Template{}}
}

func (m *memoryTemplateRepo) Create(tmpl *models.Template) error {
	m.nextID++
	tmpl.ID = m.nextID
	stored := *tmpl
	stored.Sections = tmpl.Sections.Clone()
	m.templates[tmpl.ID] = stored
	return nil
}

func (m *memoryTemplateRepo) Update(tmpl *models.Template) error {
	if _, ok := m.templates[tmpl.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *tmpl
	stored.Sections = tmpl.Sections.Clone()
	m.templates[tmpl.ID] = stored
	return nil
}

func (m *memoryTemplateRepo) Delete(id uint) error {
	if _, ok := m.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memoryTemplateRepo) GetByID(id uint) (*models.Template, error) {
	tmpl, ok := m.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	tmpl.Sections = tmpl.Sections.Clone()
	return &tmpl, nil
}

func (m *memoryTemplateRepo) GetBySlug(slug string) (*models.Template, error) {
	for id, tmpl := range m.templates {
		if tmpl.Slug == slug {
			return m.GetByID(id)
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryTemplateRepo) List(filter models.ListFilter) ([]models.Template, int64, error) {
	var out []models.Template
	for _, tmpl := range m.templates {
		if filter.Status != "" && string(tmpl.Status) != filter.Status {
			continue
		}
		out = append(out, tmpl)
	}
	return out, int64(len(out)), nil
}

func (m *memoryTemplateRepo) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	for _, tmpl := range m.templates {
		if tmpl.Slug == slug && tmpl.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type memoryContentRepo struct {
	nextID    uint
	contents  map[uint]models.Content
	failWrite error
}

func newMemoryContentRepo() *memoryContentRepo {
	return &memoryContentRepo{contents: map[uint]models.Content{}}
}

func (m *memoryContentRepo) Create(doc *models.Content) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	m.nextID++
	doc.ID = m.nextID
	m.contents[doc.ID] = *doc
	return nil
}

func (m *memoryContentRepo) Update(doc *models.Content) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	if _, ok := m.contents[doc.ID]; !ok {
		return repository.ErrNotFound
	}
	m.contents[doc.ID] = *doc
	return nil
}

func (m *memoryContentRepo) Delete(id uint) error {
	if _, ok := m.contents[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.contents, id)
	return nil
}

func (m *memoryContentRepo) GetByID(id uint) (*models.Content, error) {
	doc, ok := m.contents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	values := make(models.ContentSections, len(doc.Sections))
	for k, v := range doc.Sections {
		values[k] = v
	}
	doc.Sections = values
	doc.Schema = doc.Schema.Clone()
	return &doc, nil
}

func (m *memoryContentRepo) ListByUser(userID uint) ([]models.Content, error) {
	var out []models.Content
	for _, doc := range m.contents {
		if doc.CreatedBy == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryContentRepo) ListByTemplate(templateID uint) ([]models.Content, error) {
	var out []models.Content
	for _, doc := range m.contents {
		if doc.TemplateID == templateID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryContentRepo) List(filter models.ListFilter) ([]models.Content, int64, error) {
	var out []models.Content
	for _, doc := range m.contents {
		if filter.TenantName != "" && doc.TenantName != filter.TenantName {
			continue
		}
		out = append(out, doc)
	}
	return out, int64(len(out)), nil
}

type memoryQuestionRepo struct {
	nextID    uint
	questions map[uint]models.Question
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{questions: map[uint]models.Question{}}
}

func (m *memoryQuestionRepo) Create(q *models.Question) error {
	m.nextID++
	q.ID = m.nextID
	m.questions[q.ID] = *q
	return nil
}

func (m *memoryQuestionRepo) Update(q *models.Question) error {
	if _, ok := m.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	m.questions[q.ID] = *q
	return nil
}

func (m *memoryQuestionRepo) Delete(id uint) error {
	if _, ok := m.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *memoryQuestionRepo) GetByID(id uint) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (m *memoryQuestionRepo) List(filter models.ListFilter, quiz string) ([]models.Question, error) {
	var out []models.Question
	for _, q := range m.questions {
		if quiz != "" && q.Quiz != quiz {
			continue
		}
		if filter.TenantName != "" && q.TenantName != filter.TenantName {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

type memoryResponseRepo struct {
	nextID    uint
	responses []models.Response
}

func (m *memoryResponseRepo) Create(r *models.Response) error {
	m.nextID++
	r.ID = m.nextID
	m.responses = append(m.responses, *r)
	return nil
}

func (m *memoryResponseRepo) ListByQuestion(questionID uint) ([]models.Response, error) {
	var out []models.Response
	for _, r := range m.responses {
		if r.QuestionID == questionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryResponseRepo) ListByUser(userID uint) ([]models.Response, error) {
	var out []models.Response
	for _, r := range m.responses {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryResponseRepo) List(filter models.ListFilter) ([]models.Response, int64, error) {
	return m.responses, int64(len(m.responses)), nil
}

func (m *memoryResponseRepo) Delete(id uint) error {
	for i, r := range m.responses {
		if r.ID == id {
			m.responses = append(m.responses[:i], m.responses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memoryShortLinkRepo struct {
	nextID uint
	links  map[string]models.ShortLink
}

func newMemoryShortLinkRepo() *memoryShortLinkRepo {
	return &memoryShortLinkRepo{links: map[string]models.ShortLink{}}
}

func (m *memoryShortLinkRepo) Create(link *models.ShortLink) error {
	if _, ok := m.links[link.Code]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	link.ID = m.nextID
	m.links[link.Code] = *link
	return nil
}

func (m *memoryShortLinkRepo) GetByCode(code string) (*models.ShortLink, error) {
	link, ok := m.links[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &link, nil
}

func (m *memoryShortLinkRepo) GetByID(id uint) (*models.ShortLink, error) {
	for _, link := range m.links {
		if link.ID == id {
			copy := link
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryShortLinkRepo) ListByUser(userID uint) ([]models.ShortLink, error) {
	var out []models.ShortLink
	for _, link := range m.links {
		if link.CreatedBy == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *memoryShortLinkRepo) IncrementClicks(code string) error {
	link, ok := m.links[code]
	if !ok {
		return repository.ErrNotFound
	}
	link.Clicks++
	m.links[code] = link
	return nil
}

func (m *memoryShortLinkRepo) Delete(id uint) error {
	for code, link := range m.links {
		if link.ID == id {
			delete(m.links, code)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memoryFeedbackRepo struct {
	items []models.Feedback
}

func (m *memoryFeedbackRepo) Create(f *models.Feedback) error {
	f.ID = uint(len(m.items) + 1)
	m.items = append(m.items, *f)
	return nil
}

func (m *memoryFeedbackRepo) List(filter models.ListFilter) ([]models.Feedback, int64, error) {
	var out []models.Feedback
	for _, f := range m.items {
		if filter.TenantName == "" || strings.EqualFold(f.TenantName, filter.TenantName) {
			out = append(out, f)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryFeedbackRepo) Delete(id uint) error {
	for i, f := range m.items {
		if f.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memoryFeedbackRepo) AverageRating(tenant string) (float64, error) {
	items, n, _ := m.List(models.ListFilter{TenantName: tenant})
	if n == 0 {
		return 0, nil
	}
	sum := 0
	for _, f := range items {
		sum += f.Rating
	}
	return float64(sum) / float64(n), nil
}
