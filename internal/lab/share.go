package lab

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"flakelab/internal/snowflake"
	"flakelab/internal/sqlgen"
)

// Share manages a secure data share over one schema
type Share struct {
	Exec     snowflake.Executor
	Name     string
	Comment  string
	Database string
	Schema   string
	Logger   *zap.Logger
}

// NewShare returns the lab share over SHARED_DATA
func NewShare(exec snowflake.Executor, log *zap.Logger) *Share {
	if log == nil {
		log = zap.NewNop()
	}
	return &Share{
		Exec:     exec,
		Name:     ShareName,
		Comment:  ShareDescription,
		Database: Database,
		Schema:   SchemaShared,
		Logger:   log,
	}
}

// Create creates the share if it does not exist
func (s *Share) Create(ctx context.Context) error {
	s.Logger.Info("Creating share: " + s.Name)
	if err := s.Exec.Exec(ctx, sqlgen.CreateShare(s.Name, s.Comment), "Creating share "+s.Name); err != nil {
		return err
	}
	s.Logger.Info(fmt.Sprintf("✅ Share %s created successfully", s.Name))
	return nil
}

// Grant gives the share usage on the database and schema and select on
// each view
func (s *Share) Grant(ctx context.Context, views ...string) error {
	schema := sqlgen.Qualify(s.Database, s.Schema)
	grants := []struct{ stmt, desc string }{
		{sqlgen.GrantUsageToShare("DATABASE", s.Database, s.Name), "Granting database usage: " + s.Database},
		{sqlgen.GrantUsageToShare("SCHEMA", schema, s.Name), "Granting schema usage: " + s.Schema},
	}
	for _, view := range views {
		grants = append(grants, struct{ stmt, desc string }{
			sqlgen.GrantSelectToShare("VIEW", sqlgen.Qualify(schema, view), s.Name), "Adding view " + view,
		})
	}
	for _, g := range grants {
		if err := s.Exec.Exec(ctx, g.stmt, g.desc); err != nil {
			return err
		}
	}
	s.Logger.Info(fmt.Sprintf("✅ Objects added to share %s successfully", s.Name), zap.Int("views", len(views)))
	return nil
}

// AddAccounts grants the share to consumer accounts. Demo accounts usually
// lack the privilege, so a failure is only logged.
func (s *Share) AddAccounts(ctx context.Context, accounts ...string) bool {
	if len(accounts) == 0 {
		return true
	}
	stmt := sqlgen.AlterShareAddAccounts(s.Name, accounts...)
	if !s.Exec.ExecBestEffort(ctx, stmt, "Granting share to "+strings.Join(accounts, ", ")) {
		s.Logger.Warn("⚠️  Could not grant share (demo environment)")
		s.Logger.Info("💡 In production, use actual account identifiers")
		return false
	}
	s.Logger.Info("✅ Share granted to accounts", zap.Strings("accounts", accounts))
	return true
}

// ListObjects returns the names of the objects granted to the share
func (s *Share) ListObjects(ctx context.Context) ([]string, error) {
	names, err := s.Exec.QueryColumn(ctx, "SHOW GRANTS TO SHARE "+s.Name, "name")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		s.Logger.Info("No objects currently in share " + s.Name)
		return names, nil
	}
	s.Logger.Info(fmt.Sprintf("📋 Objects in share %s:", s.Name))
	for _, n := range names {
		s.Logger.Info("   - " + n)
	}
	return names, nil
}
