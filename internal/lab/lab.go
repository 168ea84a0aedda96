package lab

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"flakelab/internal/datagen"
	"flakelab/internal/export"
	"flakelab/internal/observability"
	"flakelab/internal/snowflake"
	"flakelab/internal/sqlgen"
	"flakelab/pkg/errors"
)

// Lab builds DATA_ENG_DEMO on a single session
type Lab struct {
	Exec    snowflake.Executor
	Config  Config
	Gen     *datagen.Generator
	Logger  *zap.Logger
	Steps   *observability.StepLogger
	Metrics *observability.Metrics

	// InfraOnly stops after the stages and file formats
	InfraOnly bool
}

// Result collects what a lab run produced. Fields a mode does not touch
// stay empty.
type Result struct {
	Mode          Mode
	Loads         []*snowflake.BulkLoadResult
	Quality       []QualityResult
	SharedObjects []string
	Usage         *ShareUsage
	Validation    *ValidationResult
}

// QualityPassed reports whether every checked table met the threshold
func (r *Result) QualityPassed(threshold float64) bool {
	for _, q := range r.Quality {
		if !q.Passes(threshold) {
			return false
		}
	}
	return true
}

// New creates a lab with the given config
func New(exec snowflake.Executor, cfg Config, log *zap.Logger) *Lab {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lab{
		Exec:    exec,
		Config:  cfg,
		Logger:  log,
		Steps:   observability.NewStepLogger(log),
		Metrics: observability.NewMetrics(),
	}
}

// Run executes mode. Setup modes stop at the first failing step.
func (l *Lab) Run(ctx context.Context, mode Mode) (*Result, error) {
	if l.Exec == nil {
		return nil, errors.New(errors.ErrCodeInternal, "lab needs an executor")
	}
	if mode == "" {
		mode = ModeFull
	}
	if mode == ModeQuick {
		l.Config = l.Config.Quick()
	}

	log := l.logger()
	log.Info(strings.Repeat("=", 80))
	log.Info("🚀 DATA ENGINEERING DEMO SETUP", zap.String("version", Version), zap.String("mode", string(mode)))
	log.Info(strings.Repeat("=", 80))

	result := &Result{Mode: mode}
	switch mode {
	case ModeCleanup:
		return result, l.Cleanup(ctx)
	case ModeValidate:
		result.Validation = l.Validate(ctx)
		return result, nil
	}

	if err := l.Config.Validate(); err != nil {
		return nil, err
	}
	if mode == ModeQuick {
		log.Info("📦 Quick mode: Using minimal data volumes")
	}

	steps := []step{
		{"Database and Schema Setup", func() error { return l.createDatabase(ctx) }},
		{"Warehouse Setup", func() error { return l.createWarehouses(ctx) }},
		{"Pipeline Infrastructure Setup", func() error { return l.createStages(ctx) }},
	}
	if !l.InfraOnly {
		steps = append(steps,
			step{"Fixture Load", func() error { return l.loadFixtures(ctx, result) }},
			step{"Snowpipe Setup", func() error { return l.createPipes(ctx) }},
			step{"Data Transformation", func() error { return l.transform(ctx) }},
			step{"Dynamic Tables Setup", func() error { return l.createDynamicTables(ctx) }},
			step{"Data Quality Validation", func() error { return l.checkQuality(ctx, result) }},
			step{"Data Sharing Setup", func() error { return l.setupShare(ctx, result) }},
			step{"Share Monitoring", func() error { return l.monitorShare(ctx, result) }},
		)
	}

	for _, s := range steps {
		if _, err := l.steps().Run(s.name, s.fn); err != nil {
			log.Error("❌ Setup failed", zap.Error(err))
			return result, errors.Wrap(err, errors.ErrCodeStepFailed, "Lab setup failed").
				WithContext("step", s.name).
				WithContext("mode", string(mode))
		}
	}

	if l.InfraOnly {
		log.Info("⚠️  Infrastructure only: fixtures, pipelines and the share were skipped")
	}
	l.steps().Metrics(l.metrics())

	log.Info("🎉 Setup Complete! Running validation...")
	result.Validation = l.Validate(ctx)

	log.Info("✅ DATA ENGINEERING DEMO READY!",
		zap.String("database", Database),
		zap.String("share", ShareName),
		zap.String("from", l.Config.StartDate()),
		zap.String("to", l.Config.EndDate()))
	return result, nil
}

// step is a named setup phase
type step struct {
	name string
	fn   func() error
}

func (l *Lab) createDatabase(ctx context.Context) error {
	log := l.logger()
	log.Info("Creating database and schemas...")
	if err := l.Exec.Exec(ctx, sqlgen.CreateDatabase(Database, "Data Engineering Demo: ETL/ELT, Data Sharing, Dynamic Tables"), "Creating "+Database); err != nil {
		return err
	}
	for _, s := range schemas {
		if err := l.Exec.Exec(ctx, sqlgen.CreateSchema(sqlgen.Qualify(Database, s.name), s.comment), "Creating schema "+s.name); err != nil {
			return err
		}
		log.Info("✅ Schema created: " + s.name)
	}
	return nil
}

func (l *Lab) createWarehouses(ctx context.Context) error {
	warehouses := []sqlgen.Warehouse{
		{Name: WarehouseLoad, Size: "MEDIUM", Comment: "Data loading operations"},
		{Name: WarehouseTransform, Size: "LARGE", Comment: "Data transformation operations"},
		{Name: WarehouseAnalytics, Size: "XSMALL", Comment: "Analytics queries"},
	}
	for _, wh := range warehouses {
		wh.AutoSuspend = 300
		wh.AutoResume = true
		wh.InitiallySuspended = true
		if err := l.Exec.Exec(ctx, wh.SQL(), "Creating warehouse "+wh.Name); err != nil {
			return err
		}
		l.logger().Info(fmt.Sprintf("✅ Warehouse created: %s (%s)", wh.Name, wh.Size))
	}
	return nil
}

func (l *Lab) createStages(ctx context.Context) error {
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Schema: SchemaRaw, Warehouse: WarehouseLoad}); err != nil {
		return err
	}
	objects := []struct{ stmt, desc string }{
		{sqlgen.CreateStage(raw(StageCSV), "Internal stage for CSV file ingestion"), "Creating CSV stage"},
		{sqlgen.CSVFormat(raw(FormatCSV)).SQL(), "Creating CSV format"},
		{sqlgen.CreateStage(raw(StageJSON), "Internal stage for JSON file ingestion"), "Creating JSON stage"},
		{sqlgen.JSONFormat(raw(FormatJSON)).SQL(), "Creating JSON format"},
		{sqlgen.CreateStage(raw(StageParquet), "Internal stage for Parquet file ingestion"), "Creating Parquet stage"},
		{sqlgen.ParquetFormat(raw(FormatParquet)).SQL(), "Creating Parquet format"},
	}
	for _, o := range objects {
		if err := l.Exec.Exec(ctx, o.stmt, o.desc); err != nil {
			return err
		}
	}
	l.logger().Info("✅ All stages and formats created successfully")
	return nil
}

// loadFixtures generates the retail data set, writes it to Parquet and
// bulk loads each file into its RAW_DATA table
func (l *Lab) loadFixtures(ctx context.Context, result *Result) error {
	if err := l.Exec.SetQueryTag(ctx, TagLoad); err != nil {
		return err
	}
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Schema: SchemaRaw, Warehouse: WarehouseLoad}); err != nil {
		return err
	}
	for _, t := range rawTables {
		if err := l.Exec.Exec(ctx, createRawTable(t.name, t.ddl), "Creating table "+t.name); err != nil {
			return err
		}
	}

	dir := l.Config.DataDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "flakelab-lab-")
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to create fixture directory")
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	fx := l.generator().Retail(l.Config.Volumes())
	files, err := export.WriteRetail(dir, fx)
	if err != nil {
		return err
	}
	l.logger().Info("Fixtures written", zap.String("dir", dir), zap.Int("files", len(files)))

	for _, f := range files {
		loaded, err := snowflake.BulkLoad(ctx, l.Exec, snowflake.BulkLoadOptions{
			Table:           raw(f.Table),
			Stage:           raw(StageParquet),
			Format:          raw(FormatParquet),
			Files:           []string{f.Path},
			ContinueOnError: true,
		})
		if err != nil {
			return err
		}
		if loaded.RowsLoaded < int64(f.Rows) {
			l.logger().Warn(fmt.Sprintf("⚠️  %s loaded fewer rows than generated", f.Table),
				zap.Int64("rows_loaded", loaded.RowsLoaded), zap.Int("rows_generated", f.Rows))
		} else {
			l.logger().Info(fmt.Sprintf("✅ %s loaded", f.Table), zap.Int64("rows", loaded.RowsLoaded))
		}
		l.metrics().Counter("rows_" + strings.ToLower(f.Table)).Add(float64(loaded.RowsLoaded))
		result.Loads = append(result.Loads, loaded)
	}
	return nil
}

func (l *Lab) createPipes(ctx context.Context) error {
	pipes := []struct {
		name string
		load sqlgen.CopyInto
	}{
		{PipeTransactions, sqlgen.CopyInto{Table: raw("TRANSACTIONS"), Stage: raw(StageCSV), Format: raw(FormatCSV)}},
		{PipeCustomerEvents, sqlgen.CopyInto{Table: raw("CUSTOMER_EVENTS"), Stage: raw(StageJSON), Format: raw(FormatJSON), MatchByName: true}},
	}
	for _, p := range pipes {
		if err := l.Exec.Exec(ctx, sqlgen.CreatePipe(raw(p.name), p.load), "Creating pipe "+p.name); err != nil {
			return err
		}
		l.logger().Info(fmt.Sprintf("✅ Snowpipe %s created successfully", p.name))
	}
	return nil
}

// transform builds the CURATED tables and the ANALYTICS views
func (l *Lab) transform(ctx context.Context) error {
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Warehouse: WarehouseTransform}); err != nil {
		return err
	}
	if err := l.Exec.SetQueryTag(ctx, TagTransform); err != nil {
		return err
	}

	tables := []struct{ name, query string }{
		{"CUSTOMERS", curatedCustomers},
		{"PRODUCTS", curatedProducts},
		{"TRANSACTIONS", curatedTransactions},
	}
	for _, t := range tables {
		if err := l.Exec.Exec(ctx, sqlgen.CreateTableAs(curated(t.name), t.query), "Transforming "+t.name+" to curated layer"); err != nil {
			return err
		}
		rows, err := l.Exec.QueryInt(ctx, sqlgen.CountRows(curated(t.name)))
		if err != nil {
			return err
		}
		l.logger().Info(fmt.Sprintf("✅ Curated %s created with %d rows", t.name, rows))
	}
	l.cluster(ctx)

	views := []struct{ name, query string }{
		{"DAILY_SALES_SUMMARY", dailySalesSummary},
		{"CUSTOMER_LTV", customerLTV},
	}
	for _, v := range views {
		name := sqlgen.Qualify(Database, SchemaAnalytics, v.name)
		if err := l.Exec.Exec(ctx, sqlgen.CreateView(name, v.query), "Creating "+v.name+" view"); err != nil {
			return err
		}
	}
	l.logger().Info("✅ Analytical views created successfully")
	return nil
}

// cluster applies the clustering keys, best effort
func (l *Lab) cluster(ctx context.Context) {
	targets := []struct{ key, table string }{
		{"TRANSACTIONS", curated("TRANSACTIONS")},
		{"PRODUCTS", curated("PRODUCTS")},
		{"CUSTOMER_EVENTS", raw("CUSTOMER_EVENTS")},
	}
	for _, t := range targets {
		l.Exec.ExecBestEffort(ctx, sqlgen.ClusterBy(t.table, ClusteringKeys[t.key]...), "Clustering "+t.table)
	}
}

func (l *Lab) createDynamicTables(ctx context.Context) error {
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Warehouse: WarehouseTransform}); err != nil {
		return err
	}
	dt := sqlgen.DynamicTable{
		Name:      curated("CUSTOMER_TRANSACTION_SUMMARY"),
		TargetLag: l.Config.DynamicTableLag,
		Warehouse: WarehouseTransform,
		Query:     customerTransactionSummary,
	}
	if dt.TargetLag == "" {
		dt.TargetLag = DefaultConfig().DynamicTableLag
	}
	if err := l.Exec.Exec(ctx, dt.SQL(), "Creating dynamic table CUSTOMER_TRANSACTION_SUMMARY"); err != nil {
		return err
	}
	l.logger().Info("✅ Dynamic tables created successfully")
	return nil
}

// checkQuality never fails the setup; low scores are reported
func (l *Lab) checkQuality(ctx context.Context, result *Result) error {
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Warehouse: WarehouseAnalytics}); err != nil {
		return err
	}
	passed := 0
	for _, table := range QualityTables {
		q := RunQualityChecks(ctx, l.Exec, table, l.Config.QualityThreshold, l.logger())
		result.Quality = append(result.Quality, q)
		if q.Passes(l.Config.QualityThreshold) {
			passed++
		}
	}
	l.metrics().Gauge("quality_tables_passed").Set(float64(passed))

	if passed == len(QualityTables) {
		l.logger().Info("✅ All data quality checks passed!")
	} else {
		l.logger().Warn("⚠️  Some data quality checks failed")
	}
	return nil
}

func (l *Lab) setupShare(ctx context.Context, result *Result) error {
	if err := l.Exec.UseContext(ctx, snowflake.Context{Database: Database, Warehouse: WarehouseAnalytics}); err != nil {
		return err
	}
	log := l.logger()
	log.Info("Creating secure views for sharing...")
	for _, v := range sharedViews {
		name := sqlgen.Qualify(Database, SchemaShared, v.name)
		if err := l.Exec.Exec(ctx, sqlgen.CreateSecureView(name, v.query), "Creating secure view "+v.name); err != nil {
			return err
		}
	}

	share := NewShare(l.Exec, log)
	if err := share.Create(ctx); err != nil {
		return err
	}
	if err := share.Grant(ctx, SharedViews()...); err != nil {
		return err
	}
	share.AddAccounts(ctx, l.Config.ShareAccounts...)

	objects, err := share.ListObjects(ctx)
	if err != nil {
		log.Warn("Could not list share objects", zap.Error(err))
	}
	result.SharedObjects = objects
	l.metrics().Gauge("share_objects").Set(float64(len(objects)))
	log.Info("✅ Demo data share setup complete")
	return nil
}

func (l *Lab) monitorShare(ctx context.Context, result *Result) error {
	name := sqlgen.Qualify(Database, SchemaAnalytics, "SHARE_MONITORING")
	if err := l.Exec.Exec(ctx, sqlgen.CreateView(name, shareMonitoringView(ShareName)), "Creating share monitoring view"); err != nil {
		return err
	}
	l.logger().Info("✅ Monitoring view created: " + name)

	usage := MonitorShare(ctx, l.Exec, ShareName, l.logger())
	result.Usage = &usage
	return nil
}

// Cleanup drops the database, the warehouses and the share
func (l *Lab) Cleanup(ctx context.Context) error {
	log := l.logger()
	l.steps().Step("Demo Cleanup", observability.StepStart)
	log.Warn("🗑️  Cleaning up all demo objects...")
	log.Warn("⚠️  This will delete all data!")

	stmts := []string{sqlgen.Drop("DATABASE", Database)}
	for _, wh := range Warehouses() {
		stmts = append(stmts, sqlgen.Drop("WAREHOUSE", wh))
	}
	stmts = append(stmts, sqlgen.Drop("SHARE", ShareName))

	for _, stmt := range stmts {
		if err := l.Exec.Exec(ctx, stmt, stmt); err != nil {
			l.steps().Step("Demo Cleanup", observability.StepFailed)
			return errors.Wrap(err, errors.ErrCodeCleanupFailed, "Lab cleanup failed").
				WithContext("statement", stmt)
		}
	}

	log.Info("✅ Cleanup complete!")
	l.steps().Step("Demo Cleanup", observability.StepComplete)
	return nil
}

func (l *Lab) generator() *datagen.Generator {
	if l.Gen == nil {
		l.Gen = datagen.New(0, l.Config.now())
	}
	return l.Gen
}

func (l *Lab) logger() *zap.Logger {
	if l.Logger == nil {
		l.Logger = zap.NewNop()
	}
	return l.Logger
}

func (l *Lab) steps() *observability.StepLogger {
	if l.Steps == nil {
		l.Steps = observability.NewStepLogger(l.logger())
	}
	return l.Steps
}

func (l *Lab) metrics() *observability.Metrics {
	if l.Metrics == nil {
		l.Metrics = observability.NewMetrics()
	}
	return l.Metrics
}
