package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/models"
)

// memStore understands just enough of the SQL issued by the directory, the
// ledger and the recommendation filter to run multi-step scenarios in memory.
// Transactions work on a copy of the state that replaces it on commit.
type memStore struct {
	mu        sync.Mutex
	state     *memState
	failOn    string
	commits   int
	rollbacks int
}

type memState struct {
	users    []*models.User
	friends  map[uuid.UUID]map[uuid.UUID]bool
	requests []*models.FriendRequest
}

func newMemStore() *memStore {
	return &memStore{state: &memState{friends: map[uuid.UUID]map[uuid.UUID]bool{}}}
}

func (st *memState) clone() *memState {
	c := &memState{friends: map[uuid.UUID]map[uuid.UUID]bool{}}
	for _, u := range st.users {
		cp := *u
		c.users = append(c.users, &cp)
	}
	for id, set := range st.friends {
		c.friends[id] = map[uuid.UUID]bool{}
		for f := range set {
			c.friends[id][f] = true
		}
	}
	for _, r := range st.requests {
		cp := *r
		c.requests = append(c.requests, &cp)
	}
	return c
}

func (m *memStore) addUser(name string, onboarded bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{
		ID:               uuid.New(),
		Email:            strings.ToLower(name) + "@example.com",
		FullName:         name,
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		IsOnboarded:      onboarded,
		CreatedAt:        time.Now().Add(time.Duration(len(m.state.users)) * time.Second),
	}
	m.state.users = append(m.state.users, u)
	return u
}

func (m *memStore) friendsOf(id uuid.UUID) map[uuid.UUID]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for f := range m.state.friends[id] {
		out[f] = true
	}
	return out
}

func (m *memStore) request(id uuid.UUID) *models.FriendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.state.requests {
		if r.ID == id {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (m *memStore) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memExec(m.state, m.failOn, sql, args)
}

func (m *memStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memQuery(m.state, m.failOn, sql, args)
}

func (m *memStore) QueryRow(ctx context.Context, sql string, args ...any) Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memQueryRow(m.state, m.failOn, sql, args)
}

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memTx{store: m, state: m.state.clone()}, nil
}

type memTx struct {
	store *memStore
	state *memState
	done  bool
}

func (t *memTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return memExec(t.state, t.store.failOn, sql, args)
}

func (t *memTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return memQuery(t.state, t.store.failOn, sql, args)
}

func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return memQueryRow(t.state, t.store.failOn, sql, args)
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx closed")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.state = t.state
	t.store.commits++
	t.done = true
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return errors.New("tx closed")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.rollbacks++
	t.done = true
	return nil
}

var errInjected = errors.New("injected failure")

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}

func (st *memState) user(id uuid.UUID) *models.User {
	for _, u := range st.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func publicValues(u *models.User) []any {
	return []any{u.ID, u.FullName, u.ProfilePic, u.Bio, u.NativeLanguage, u.LearningLanguage, u.Location, u.IsOnboarded}
}

func requestValues(r *models.FriendRequest) []any {
	return []any{r.ID, r.SenderID, r.RecipientID, r.Status, r.CreatedAt, r.UpdatedAt}
}

func memExec(st *memState, failOn, sql string, args []any) (CommandTag, error) {
	if failOn != "" && strings.Contains(sql, failOn) {
		return nil, errInjected
	}
	switch {
	case strings.Contains(sql, "INSERT INTO user_friends"):
		a, b := args[0].(uuid.UUID), args[1].(uuid.UUID)
		var n int64
		for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
			if st.friends[pair[0]] == nil {
				st.friends[pair[0]] = map[uuid.UUID]bool{}
			}
			if !st.friends[pair[0]][pair[1]] {
				st.friends[pair[0]][pair[1]] = true
				n++
			}
		}
		return fakeCommandTag{rowsAffected: n}, nil
	}
	return nil, errors.New("memstore: unsupported exec: " + sql)
}

func memQueryRow(st *memState, failOn, sql string, args []any) Row {
	if failOn != "" && strings.Contains(sql, failOn) {
		return errRow(errInjected)
	}
	switch {
	case strings.Contains(sql, "UPDATE users SET"):
		u := st.user(args[0].(uuid.UUID))
		if u == nil {
			return noRows()
		}
		for i, dst := range []*string{&u.FullName, &u.Bio, &u.ProfilePic, &u.NativeLanguage, &u.LearningLanguage, &u.Location} {
			if v, ok := args[i+1].(*string); ok && v != nil {
				*dst = *v
			}
		}
		u.IsOnboarded = u.IsOnboarded || (u.FullName != "" && u.NativeLanguage != "" && u.LearningLanguage != "")
		u.UpdatedAt = time.Now()
		return rowFromValues(u.ID, u.Email, u.PasswordHash, u.FullName, u.Bio, u.ProfilePic,
			u.NativeLanguage, u.LearningLanguage, u.Location, u.IsOnboarded, u.CreatedAt, u.UpdatedAt)
	case strings.Contains(sql, "FROM users WHERE id = $1") && strings.Contains(sql, "EXISTS"):
		return rowFromValues(st.user(args[0].(uuid.UUID)) != nil)
	case strings.Contains(sql, "FROM user_friends WHERE user_id = $1 AND friend_id = $2"):
		return rowFromValues(st.friends[args[0].(uuid.UUID)][args[1].(uuid.UUID)])
	case strings.Contains(sql, "INSERT INTO friend_requests"):
		sender, recipient := args[0].(uuid.UUID), args[1].(uuid.UUID)
		key := pairKey(sender, recipient)
		for _, r := range st.requests {
			if pairKey(r.SenderID, r.RecipientID) == key {
				return noRows()
			}
		}
		now := time.Now()
		r := &models.FriendRequest{
			ID:          uuid.New(),
			SenderID:    sender,
			RecipientID: recipient,
			Status:      models.FriendRequestStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.requests = append(st.requests, r)
		return rowFromValues(requestValues(r)...)
	case strings.Contains(sql, "UPDATE friend_requests SET status = 'accepted'"):
		for _, r := range st.requests {
			if r.ID == args[0].(uuid.UUID) && r.Status == models.FriendRequestStatusPending {
				r.Status = models.FriendRequestStatusAccepted
				r.UpdatedAt = time.Now()
				return rowFromValues(r.UpdatedAt)
			}
		}
		return noRows()
	case strings.Contains(sql, "FROM friend_requests WHERE id = $1"):
		for _, r := range st.requests {
			if r.ID == args[0].(uuid.UUID) {
				return rowFromValues(requestValues(r)...)
			}
		}
		return noRows()
	}
	return errRow(errors.New("memstore: unsupported query row: " + sql))
}

func memQuery(st *memState, failOn, sql string, args []any) (Rows, error) {
	if failOn != "" && strings.Contains(sql, failOn) {
		return nil, errInjected
	}
	id := args[0].(uuid.UUID)
	rows := &fakeRows{}
	switch {
	case strings.Contains(sql, "FROM users u") && strings.Contains(sql, "is_onboarded = true"):
		for _, u := range st.users {
			if u.ID == id || !u.IsOnboarded || st.friends[id][u.ID] {
				continue
			}
			rows.rows = append(rows.rows, publicValues(u))
		}
	case strings.Contains(sql, "FROM user_friends f"):
		var friends []*models.User
		for _, u := range st.users {
			if st.friends[id][u.ID] {
				friends = append(friends, u)
			}
		}
		sort.SliceStable(friends, func(i, j int) bool { return friends[i].FullName < friends[j].FullName })
		for _, u := range friends {
			rows.rows = append(rows.rows, publicValues(u))
		}
	case strings.Contains(sql, "JOIN users u ON u.id = r.sender_id"):
		for _, r := range st.requests {
			if r.RecipientID == id && r.Status == models.FriendRequestStatusPending {
				rows.rows = append(rows.rows, append(requestValues(r), publicValues(st.user(r.SenderID))...))
			}
		}
	case strings.Contains(sql, "JOIN users u ON u.id = r.recipient_id"):
		for _, r := range st.requests {
			if r.SenderID == id {
				rows.rows = append(rows.rows, append(requestValues(r), publicValues(st.user(r.RecipientID))...))
			}
		}
	default:
		return nil, errors.New("memstore: unsupported query: " + sql)
	}
	return rows, nil
}
