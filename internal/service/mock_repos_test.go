package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	pkgerrors "campus-desk/backend/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 9, 10, 30, 0, 0, time.Local)

// ── 测试环境 ──

type testEnv struct {
	repo       *repository.Repository
	users      *mockUserRepo
	roles      *mockRoleRepo
	orders     *mockOrderRepo
	categories *mockCategoryRepo
	articles   *mockArticleRepo
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	roles := newMockRoleRepo()
	env := &testEnv{
		users:      users,
		roles:      roles,
		orders:     newMockOrderRepo(users),
		categories: newMockCategoryRepo(),
		articles:   newMockArticleRepo(),
	}
	env.repo = &repository.Repository{
		User:        env.users,
		Role:        env.roles,
		RepairOrder: env.orders,
		Category:    env.categories,
		Article:     env.articles,
	}
	return env
}

// addUser 直接写入一个用户并分配角色
func (e *testEnv) addUser(username, studentID, passwordHash string, roles ...string) *model.User {
	u := model.NewActiveUser(username, studentID, passwordHash)
	u.RealName = username
	_ = e.users.Create(context.Background(), u)
	for _, code := range roles {
		role := e.roles.roles[code]
		_ = e.roles.Assign(context.Background(), []model.UserRole{{UserID: u.ID, RoleID: role.ID}})
	}
	return u
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[uint64]*model.User
	nextID uint64
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = fixedNow
	user.UpdatedAt = fixedNow
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []*model.User) error {
	for _, u := range users {
		if err := m.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	for _, u := range m.users {
		if u.StudentID == studentID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	if u, err := m.GetByUsername(ctx, account); err == nil {
		return u, nil
	}
	return m.GetByStudentID(ctx, account)
}

func (m *mockUserRepo) FindExisting(_ context.Context, usernames, studentIDs []string) ([]string, []string, error) {
	var takenU, takenS []string
	for _, u := range m.users {
		for _, name := range usernames {
			if u.Username == name {
				takenU = append(takenU, name)
			}
		}
		for _, sid := range studentIDs {
			if u.StudentID == sid {
				takenS = append(takenS, sid)
			}
		}
	}
	return takenU, takenS, nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filters != nil && filters.Keyword != "" &&
			!strings.Contains(u.Username, filters.Keyword) && !strings.Contains(u.StudentID, filters.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) UpdateLoginMeta(_ context.Context, id uint64, ip string, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLoginIP = ip
	u.LastLoginAt = &at
	u.LoginCount++
	return nil
}

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles map[string]*model.Role
	links []model.UserRole
}

func newMockRoleRepo() *mockRoleRepo {
	m := &mockRoleRepo{roles: make(map[string]*model.Role)}
	for i, code := range []string{model.RoleAdmin, model.RoleStaff, model.RoleUser} {
		role := &model.Role{Code: code, Name: code}
		role.ID = uint64(i + 1)
		m.roles[code] = role
	}
	return m
}

func (m *mockRoleRepo) GetByCode(_ context.Context, code string) (*model.Role, error) {
	if r, ok := m.roles[code]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) codeOf(roleID uint64) string {
	for code, r := range m.roles {
		if r.ID == roleID {
			return code
		}
	}
	return ""
}

func (m *mockRoleRepo) ListCodesByUserID(_ context.Context, userID uint64) ([]string, error) {
	codes := []string{}
	for _, l := range m.links {
		if l.UserID == userID {
			codes = append(codes, m.codeOf(l.RoleID))
		}
	}
	return codes, nil
}

func (m *mockRoleRepo) ListCodesByUserIDs(_ context.Context, userIDs []uint64) (map[uint64][]string, error) {
	want := make(map[uint64]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	result := make(map[uint64][]string)
	for _, l := range m.links {
		if want[l.UserID] {
			result[l.UserID] = append(result[l.UserID], m.codeOf(l.RoleID))
		}
	}
	return result, nil
}

func (m *mockRoleRepo) Assign(_ context.Context, links []model.UserRole) error {
	m.links = append(m.links, links...)
	return nil
}

// ── Mock RepairOrderRepository ──

type mockOrderRepo struct {
	orders map[uint64]*model.RepairOrder
	seq    map[string]int
	nextID uint64
	users  *mockUserRepo

	// beforeCAS 在条件比较前调用，用于模拟并发修改
	beforeCAS func(o *model.RepairOrder)
}

func newMockOrderRepo(users *mockUserRepo) *mockOrderRepo {
	return &mockOrderRepo{
		orders: make(map[uint64]*model.RepairOrder),
		seq:    make(map[string]int),
		users:  users,
	}
}

func (m *mockOrderRepo) NextSequence(_ context.Context, day string) (int, error) {
	m.seq[day]++
	return m.seq[day], nil
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.RepairOrder) error {
	for _, o := range m.orders {
		if o.OrderNo == order.OrderNo {
			return fmt.Errorf("duplicate order_no %s", order.OrderNo)
		}
	}
	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = fixedNow.Add(time.Duration(m.nextID) * time.Second)
	order.UpdatedAt = order.CreatedAt
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

// snapshot 返回副本并填充关联，模拟 Preload
func (m *mockOrderRepo) snapshot(o *model.RepairOrder) model.RepairOrder {
	cp := *o
	if u, ok := m.users.users[o.UserID]; ok {
		cp.User = u
	}
	if o.HandlerID != nil {
		if h, ok := m.users.users[*o.HandlerID]; ok {
			cp.Handler = h
		}
	}
	return cp
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uint64) (*model.RepairOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.snapshot(o)
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, f *repository.OrderListFilters, offset, limit int) ([]model.RepairOrder, int64, error) {
	var all []model.RepairOrder
	for _, o := range m.orders {
		if f != nil {
			if f.UserID != nil && o.UserID != *f.UserID {
				continue
			}
			if f.HandlerID != nil && (o.HandlerID == nil || *o.HandlerID != *f.HandlerID) {
				continue
			}
			if f.Status != nil && o.Status != *f.Status {
				continue
			}
			if f.Type != nil && o.Type != *f.Type {
				continue
			}
		}
		all = append(all, m.snapshot(o))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockOrderRepo) CompareAndUpdate(_ context.Context, id uint64, expected model.OrderStatus, updates map[string]interface{}) error {
	o, ok := m.orders[id]
	if ok && m.beforeCAS != nil {
		m.beforeCAS(o)
	}
	if !ok || o.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	for col, v := range updates {
		switch col {
		case "status":
			o.Status = model.OrderStatus(v.(int))
		case "handler_id":
			h := v.(uint64)
			o.HandlerID = &h
		case "handle_remark":
			o.HandleRemark = v.(string)
		case "handle_result":
			o.HandleResult = v.(string)
		case "handle_start_time":
			t := v.(time.Time)
			o.HandleStartTime = &t
		case "handle_end_time":
			t := v.(time.Time)
			o.HandleEndTime = &t
		case "rating":
			r := v.(int)
			o.Rating = &r
		case "evaluation":
			o.Evaluation = v.(string)
		case "evaluation_time":
			t := v.(time.Time)
			o.EvaluationTime = &t
		case "need_report":
			o.NeedReport = v.(bool)
		case "report_reason":
			o.ReportReason = v.(string)
		case "updated_at":
			o.UpdatedAt = v.(time.Time)
		default:
			return fmt.Errorf("unexpected column %s", col)
		}
	}
	return nil
}

// seedOrder 直接写入指定状态的工单
func (m *mockOrderRepo) seedOrder(userID uint64, status model.OrderStatus) *model.RepairOrder {
	o := &model.RepairOrder{
		OrderNo:      fmt.Sprintf("20260309%04d", 9000+m.nextID),
		UserID:       userID,
		Type:         model.OrderTypeNetwork,
		Status:       status,
		Description:  "网络不通",
		Location:     "8 号楼 302",
		ContactPhone: "13800138000",
		Images:       datatypes.JSONSlice[string]{},
	}
	_ = m.Create(context.Background(), o)
	return m.orders[o.ID]
}

// ── Mock KnowledgeCategoryRepository ──

type mockCategoryRepo struct {
	categories map[uint64]*model.KnowledgeCategory
	nextID     uint64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uint64]*model.KnowledgeCategory)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.KnowledgeCategory) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = fixedNow
	c.UpdatedAt = fixedNow
	stored := *c
	m.categories[c.ID] = &stored
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uint64) (*model.KnowledgeCategory, error) {
	if c, ok := m.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) GetByCode(_ context.Context, code string) (*model.KnowledgeCategory, error) {
	for _, c := range m.categories {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) ListAll(_ context.Context) ([]model.KnowledgeCategory, error) {
	all := make([]model.KnowledgeCategory, 0, len(m.categories))
	for _, c := range m.categories {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Sort != all[j].Sort {
			return all[i].Sort > all[j].Sort
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *model.KnowledgeCategory) error {
	stored, ok := m.categories[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = c.Name
	stored.Code = c.Code
	stored.ParentID = c.ParentID
	stored.Description = c.Description
	stored.Sort = c.Sort
	stored.Icon = c.Icon
	stored.Enabled = c.Enabled
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) CountChildren(_ context.Context, id uint64) (int64, error) {
	var n int64
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

// ── Mock KnowledgeArticleRepository ──

type mockArticleRepo struct {
	articles map[uint64]*model.KnowledgeArticle
	nextID   uint64
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: make(map[uint64]*model.KnowledgeArticle)}
}

func (m *mockArticleRepo) Create(_ context.Context, a *model.KnowledgeArticle) error {
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = fixedNow.Add(time.Duration(m.nextID) * time.Second)
	a.UpdatedAt = a.CreatedAt
	stored := *a
	m.articles[a.ID] = &stored
	return nil
}

func (m *mockArticleRepo) GetByID(_ context.Context, id uint64) (*model.KnowledgeArticle, error) {
	if a, ok := m.articles[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockArticleRepo) Update(_ context.Context, id uint64, updates map[string]interface{}) error {
	a, ok := m.articles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range updates {
		switch col {
		case "title":
			a.Title = v.(string)
		case "content":
			a.Content = v.(string)
		case "category_id":
			a.CategoryID = v.(uint64)
		case "tags":
			a.Tags = v.(string)
		case "keywords":
			a.Keywords = v.(string)
		case "is_top":
			a.IsTop = v.(bool)
		case "is_recommend":
			a.IsRecommend = v.(bool)
		case "sort":
			a.Sort = v.(int)
		case "allow_comment":
			a.AllowComment = v.(bool)
		case "status":
			a.Status = model.ArticleStatus(v.(int))
		case "publish_time":
			t := v.(time.Time)
			a.PublishTime = &t
		default:
			return fmt.Errorf("unexpected column %s", col)
		}
	}
	return nil
}

func (m *mockArticleRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.articles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *mockArticleRepo) sorted(keep func(a *model.KnowledgeArticle) bool) []model.KnowledgeArticle {
	var all []model.KnowledgeArticle
	for _, a := range m.articles {
		if keep(a) {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsTop != all[j].IsTop {
			return all[i].IsTop
		}
		if all[i].Sort != all[j].Sort {
			return all[i].Sort > all[j].Sort
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (m *mockArticleRepo) List(_ context.Context, f *repository.ArticleListFilters, offset, limit int) ([]model.KnowledgeArticle, int64, error) {
	all := m.sorted(func(a *model.KnowledgeArticle) bool {
		if f == nil {
			return true
		}
		if f.CategoryID != nil && a.CategoryID != *f.CategoryID {
			return false
		}
		if f.Status != nil && a.Status != *f.Status {
			return false
		}
		if f.Keyword != "" {
			return strings.Contains(a.Title, f.Keyword) || strings.Contains(a.Content, f.Keyword) ||
				strings.Contains(a.Tags, f.Keyword) || strings.Contains(a.Keywords, f.Keyword)
		}
		return true
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockArticleRepo) ListRecommended(_ context.Context, limit int) ([]model.KnowledgeArticle, error) {
	all := m.sorted(func(a *model.KnowledgeArticle) bool { return a.Status == model.ArticleStatusPublished })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].IsRecommend != all[j].IsRecommend {
			return all[i].IsRecommend
		}
		return all[i].RecommendScore() > all[j].RecommendScore()
	})
	return paginate(all, 0, limit), nil
}

func (m *mockArticleRepo) ListRelated(_ context.Context, excludeID uint64, terms []string, limit int) ([]model.KnowledgeArticle, error) {
	all := m.sorted(func(a *model.KnowledgeArticle) bool {
		if a.ID == excludeID || a.Status != model.ArticleStatusPublished {
			return false
		}
		for _, t := range terms {
			if strings.Contains(a.Tags, t) || strings.Contains(a.Keywords, t) {
				return true
			}
		}
		return false
	})
	return paginate(all, 0, limit), nil
}

func (m *mockArticleRepo) CountByCategory(_ context.Context, categoryID uint64) (int64, error) {
	var n int64
	for _, a := range m.articles {
		if a.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (m *mockArticleRepo) IncrementCounter(_ context.Context, id uint64, column string) error {
	a, ok := m.articles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch column {
	case repository.CounterViews:
		a.ViewCount++
	case repository.CounterLikes:
		a.LikeCount++
	case repository.CounterFavorites:
		a.FavoriteCount++
	default:
		return fmt.Errorf("不支持的计数字段: %s", column)
	}
	return nil
}

// ── 辅助函数 ──

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func intPtr(v int) *int { return &v }

func uint64Ptr(v uint64) *uint64 { return &v }
