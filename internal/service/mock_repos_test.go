package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sps-logbook/config"
	"sps-logbook/internal/model"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/authz"
	pkgerrors "sps-logbook/pkg/errors"
	"sps-logbook/pkg/jwt"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	u := *user
	m.users[user.Username] = &u
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

// ── Mock StationRecordRepository ──

// mockRecordRepo 以互斥锁模拟数据库的原子插入
type mockRecordRepo struct {
	mu      sync.Mutex
	records map[model.RecordKey]model.StationRecord
	scans   int
	scanErr error

	// dropOnConflict 一次性：Insert 撞键时先删除已有记录，模拟插入与读取之间被并发删除
	dropOnConflict bool
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[model.RecordKey]model.StationRecord)}
}

func (m *mockRecordRepo) Insert(_ context.Context, rec *model.StationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Key()]; ok {
		if m.dropOnConflict {
			m.dropOnConflict = false
			delete(m.records, rec.Key())
		}
		return pkgerrors.ErrKeyConflict
	}
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.records[rec.Key()] = *rec
	return nil
}

func (m *mockRecordRepo) Replace(_ context.Context, rec *model.StationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if prev, ok := m.records[rec.Key()]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.Key()] = *rec
	return nil
}

func (m *mockRecordRepo) Get(_ context.Context, key model.RecordKey) (*model.StationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *mockRecordRepo) Delete(_ context.Context, key model.RecordKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *mockRecordRepo) Scan(_ context.Context, f repository.RecordFilter) ([]model.StationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if m.scanErr != nil {
		return nil, m.scanErr
	}

	var out []model.StationRecord
	for _, r := range m.records {
		if !f.From.IsZero() && r.EntryDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.EntryDate.After(f.To) {
			continue
		}
		if len(f.Dates) > 0 && !containsDate(f.Dates, r.EntryDate) {
			continue
		}
		if len(f.Zones) > 0 && !containsZone(f.Zones, r.Zone) {
			continue
		}
		if len(f.Stations) > 0 && !containsString(f.Stations, r.Station) {
			continue
		}
		if f.SubmittedBy != "" && r.SubmittedBy != f.SubmittedBy {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate != out[j].EntryDate {
			return out[i].EntryDate.After(out[j].EntryDate)
		}
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].Station < out[j].Station
	})
	return out, nil
}

func (m *mockRecordRepo) Recent(ctx context.Context, submittedBy string, limit int) ([]model.StationRecord, error) {
	recs, err := m.Scan(ctx, repository.RecordFilter{SubmittedBy: submittedBy})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].UpdatedAt.After(recs[j].UpdatedAt) })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *mockRecordRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func containsDate(list []model.Date, d model.Date) bool {
	for _, v := range list {
		if v == d {
			return true
		}
	}
	return false
}

func containsZone(list []model.Zone, z model.Zone) bool {
	for _, v := range list {
		if v == z {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu   sync.Mutex
	jtis map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jtis[jti], nil
}

// ── 测试装配 ──

const (
	testRegistrationCode = "reg-code-2026"
	testOverrideCode     = "override-2026"
	testAdminName        = "admin"
)

// testToday 固定时钟：2024-05-10 10:00 (Asia/Kolkata)
var testToday = time.Date(2024, 5, 10, 10, 0, 0, 0, mustLoc("Asia/Kolkata"))

func mustLoc(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

type testEnv struct {
	svc       *Service
	users     *mockUserRepo
	records   *mockRecordRepo
	sessions  *session.MemoryStore
	blacklist *mockBlacklist
	jwt       *jwt.Manager
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
			SessionTTL:              time.Hour,
		},
		Authz: config.AuthzConfig{
			RegistrationCode: testRegistrationCode,
			OverrideCode:     testOverrideCode,
		},
		Admin:  config.AdminConfig{Username: testAdminName, Password: "admin-pass"},
		Report: config.ReportConfig{Timezone: "Asia/Kolkata", RecentLimit: 20},
	}
}

func setupTestEnv() *testEnv {
	cfg := newTestConfig()
	users := newMockUserRepo()
	records := newMockRecordRepo()
	repo := &repository.Repository{User: users, Record: records}
	store := session.NewMemoryStore(128, time.Hour)
	bl := newMockBlacklist()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	svc := NewService(Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Sessions:  store,
		Blacklist: bl,
		Policy:    authz.NewStaticPolicy(&cfg.Authz),
		Clock:     func() time.Time { return testToday },
		Logger:    zap.NewNop(),
	})
	return &testEnv{svc: svc, users: users, records: records, sessions: store, blacklist: bl, jwt: jwtMgr}
}

func newSession(id, username string, class model.AccessClass) *session.Session {
	return &session.Session{
		ID:          id,
		Username:    username,
		AccessClass: class,
		IsAdmin:     username == testAdminName,
	}
}

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedRecord 直接写入存储，绕过 Service 校验
func (e *testEnv) seedRecord(date string, zone model.Zone, station, by string, pumping float64) {
	rec := model.StationRecord{
		EntryDate:     mustDate(date),
		Zone:          zone,
		Station:       station,
		SubmittedBy:   by,
		TotalPumps:    4,
		WorkingPumps:  2,
		StandbyPumps:  1,
		PumpingVolume: pumping,
	}
	if zone.IsPlant() {
		rec.PumpingVolume = 0
		rec.IncomeVolume = pumping
		rec.SupplyVolume = pumping / 2
	}
	_ = e.records.Insert(context.Background(), &rec)
}
