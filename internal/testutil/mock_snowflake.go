package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"flakelab/internal/snowflake"
)

// ExecutedStatement is one statement seen by MockExecutor
type ExecutedStatement struct {
	SQL         string
	Description string
	BestEffort  bool
	Failed      bool
}

type rule struct {
	match string
	err   error
	value int64
	rows  []string
}

// MockExecutor records statements instead of running them. Responses are
// keyed by substring; the first registered match wins.
type MockExecutor struct {
	mu sync.Mutex

	Statements []ExecutedStatement
	Queries    []string
	Contexts   []snowflake.Context
	Tags       []string
	Closed     bool

	// Version is returned by CurrentVersion
	Version string

	failures []rule
	ints     []rule
	counts   []rule
	columns  []rule
	sums     []rule
}

// NewMockExecutor creates an executor where every statement succeeds
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{Version: "8.40.1"}
}

var _ snowflake.Executor = (*MockExecutor)(nil)

// FailOn makes statements and queries containing match return err
func (m *MockExecutor) FailOn(match string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, rule{match: match, err: err})
}

// SetInt sets the QueryInt result for queries containing match
func (m *MockExecutor) SetInt(match string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = append(m.ints, rule{match: match, value: value})
}

// SetCount sets the QueryCount result for queries containing match
func (m *MockExecutor) SetCount(match string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, rule{match: match, value: int64(value)})
}

// SetColumn sets the QueryColumn result for queries containing match
func (m *MockExecutor) SetColumn(match string, values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.columns = append(m.columns, rule{match: match, rows: values})
}

// SetSum sets the QuerySum result for queries containing match
func (m *MockExecutor) SetSum(match string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sums = append(m.sums, rule{match: match, value: value})
}

func (m *MockExecutor) Exec(ctx context.Context, stmt, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(stmt, description, false)
}

func (m *MockExecutor) ExecBestEffort(ctx context.Context, stmt, description string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(stmt, description, true) == nil
}

func (m *MockExecutor) ExecScript(ctx context.Context, script, description string) error {
	for _, stmt := range snowflake.SplitStatements(script) {
		if err := m.Exec(ctx, stmt, description); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockExecutor) QueryInt(ctx context.Context, query string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.query(query); err != nil {
		return 0, err
	}
	if r, ok := find(m.ints, query); ok {
		return r.value, nil
	}
	return 0, nil
}

func (m *MockExecutor) QueryCount(ctx context.Context, query string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.query(query); err != nil {
		return 0, err
	}
	if r, ok := find(m.counts, query); ok {
		return int(r.value), nil
	}
	return 0, nil
}

func (m *MockExecutor) QueryColumn(ctx context.Context, query, column string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.query(query); err != nil {
		return nil, err
	}
	if r, ok := find(m.columns, query); ok {
		return append([]string(nil), r.rows...), nil
	}
	return nil, nil
}

func (m *MockExecutor) QuerySum(ctx context.Context, query, column string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.query(query); err != nil {
		return 0, err
	}
	if r, ok := find(m.sums, query); ok {
		return r.value, nil
	}
	return 0, nil
}

func (m *MockExecutor) UseContext(ctx context.Context, c snowflake.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Contexts = append(m.Contexts, c)
	return nil
}

func (m *MockExecutor) SetQueryTag(ctx context.Context, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tags = append(m.Tags, tag)
	return nil
}

func (m *MockExecutor) CurrentVersion(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.query("SELECT CURRENT_VERSION()"); err != nil {
		return "", err
	}
	return m.Version, nil
}

func (m *MockExecutor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// SQL returns every executed statement in order
func (m *MockExecutor) SQL() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Statements))
	for i, s := range m.Statements {
		out[i] = s.SQL
	}
	return out
}

// Ran reports whether an executed statement contains fragment
func (m *MockExecutor) Ran(fragment string) bool {
	return m.IndexOf(fragment) >= 0
}

// IndexOf returns the position of the first statement containing fragment, or -1
func (m *MockExecutor) IndexOf(fragment string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Statements {
		if strings.Contains(s.SQL, fragment) {
			return i
		}
	}
	return -1
}

// Count returns how many executed statements contain fragment
func (m *MockExecutor) Count(fragment string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Statements {
		if strings.Contains(s.SQL, fragment) {
			n++
		}
	}
	return n
}

// Reset clears the recorded history but keeps the configured responses
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = nil
	m.Queries = nil
	m.Contexts = nil
	m.Tags = nil
}

func (m *MockExecutor) record(stmt, description string, bestEffort bool) error {
	err := m.failure(stmt)
	m.Statements = append(m.Statements, ExecutedStatement{
		SQL:         stmt,
		Description: description,
		BestEffort:  bestEffort,
		Failed:      err != nil,
	})
	return err
}

func (m *MockExecutor) query(q string) error {
	m.Queries = append(m.Queries, q)
	return m.failure(q)
}

func (m *MockExecutor) failure(stmt string) error {
	if r, ok := find(m.failures, stmt); ok {
		if r.err == nil {
			return fmt.Errorf("mock failure for %q", r.match)
		}
		return r.err
	}
	return nil
}

func find(rules []rule, stmt string) (rule, bool) {
	for _, r := range rules {
		if strings.Contains(stmt, r.match) {
			return r, true
		}
	}
	return rule{}, false
}
