// Package markets deploys the markets AI demo database in one of two
// variants and validates what it created.
package markets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flakelab/internal/datagen"
	"flakelab/internal/observability"
	"flakelab/internal/snowflake"
	"flakelab/internal/sqlgen"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

// step is a named deployment phase
type step struct {
	name string
	fn   func() error
}

// Deployer builds MARKETS_AI_DEMO on a single session
type Deployer struct {
	Exec    snowflake.Executor
	Variant Variant
	Gen     *datagen.Generator
	Logger  *zap.Logger
	Steps   *observability.StepLogger
	Metrics *observability.Metrics

	// AgentsDir receives the agent configuration files
	AgentsDir string
	// Warehouse runs the search services. Empty uses the variant default.
	Warehouse string
	// Prices replaces the generated stock prices when set
	Prices       []models.StockPrice
	SkipValidate bool
}

// NewDeployer creates a deployer with default settings
func NewDeployer(exec snowflake.Executor, variant Variant, gen *datagen.Generator, log *zap.Logger) *Deployer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deployer{
		Exec:      exec,
		Variant:   variant,
		Gen:       gen,
		Logger:    log,
		Steps:     observability.NewStepLogger(log),
		Metrics:   observability.NewMetrics(),
		AgentsDir: DefaultAgentsDir,
	}
}

// Deploy runs every deployment step in order. The first fatal step aborts
// the deployment; the validation report is nil when validation is skipped.
func (d *Deployer) Deploy(ctx context.Context) (*Report, error) {
	if d.Exec == nil || d.Gen == nil {
		return nil, errors.New(errors.ErrCodeInternal, "deployer needs an executor and a generator")
	}
	if d.Variant == "" {
		d.Variant = VariantMarkets
	}
	log := d.logger()
	log.Info("🚀 Starting deployment", zap.String("database", Database), zap.String("variant", string(d.Variant)))

	fixtures := d.fixtures()

	steps := []step{
		{"Database structure", func() error { return d.createDatabase(ctx) }},
		{"Tables", func() error { return d.createTables(ctx) }},
		{"Data load", func() error { return d.load(ctx, fixtures) }},
		{"Semantic views", func() error { return d.createViews(ctx) }},
	}
	if d.Variant == VariantMarkets {
		steps = append(steps, step{"Marketplace integration", func() error { d.setupMarketplace(ctx); return nil }})
	}
	steps = append(steps,
		step{"Search services", func() error { d.createSearchServices(ctx); return nil }},
		step{"Agent configurations", d.writeAgents},
	)

	for _, s := range steps {
		if _, err := d.steps().Run(s.name, s.fn); err != nil {
			log.Error("❌ Deployment failed", zap.Error(err))
			return nil, errors.Wrap(err, errors.ErrCodeStepFailed, "Deployment failed").
				WithContext("step", s.name).
				WithContext("variant", string(d.Variant))
		}
	}

	d.steps().Metrics(d.metrics())

	var report *Report
	if !d.SkipValidate {
		report = d.Validate(ctx)
	}

	log.Info("🎉 Deployment completed successfully!",
		zap.String("database", Database),
		zap.String("agents_dir", d.agentsDir()))
	if from, to := priceRange(fixtures.Prices); from != "" {
		log.Info("📅 Data range", zap.String("from", from), zap.String("to", to))
	}
	return report, nil
}

// fixtures returns the rows a deployment of the variant loads
func (d *Deployer) fixtures() models.MarketsFixtures {
	if d.Variant == VariantDualTool {
		return d.Gen.DualTool()
	}
	fx := d.Gen.Markets()
	if len(d.Prices) > 0 {
		fx.Prices = d.Prices
	}
	return fx
}

func (d *Deployer) createDatabase(ctx context.Context) error {
	if err := d.Exec.Exec(ctx, sqlgen.CreateDatabase(Database, ""), "Creating "+Database+" database"); err != nil {
		return err
	}

	// The dual-tool variant switches first and creates unqualified schemas
	if d.Variant == VariantDualTool {
		if err := d.Exec.UseContext(ctx, snowflake.Context{Database: Database}); err != nil {
			return err
		}
		for _, schema := range d.Variant.schemas() {
			if err := d.Exec.Exec(ctx, sqlgen.CreateSchema(schema, ""), "Creating "+schema+" schema"); err != nil {
				return err
			}
		}
		return nil
	}

	for _, schema := range d.Variant.schemas() {
		if err := d.Exec.Exec(ctx, sqlgen.CreateSchema(sqlgen.Qualify(Database, schema), ""), "Creating "+schema+" schema"); err != nil {
			return err
		}
	}
	return d.Exec.UseContext(ctx, snowflake.Context{Database: Database})
}

func (d *Deployer) createTables(ctx context.Context) error {
	if err := d.Exec.UseContext(ctx, snowflake.Context{Schema: SchemaRaw}); err != nil {
		return err
	}
	for _, table := range d.Variant.tables() {
		if err := d.Exec.Exec(ctx, table.sql, "Creating "+table.name+" table"); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) load(ctx context.Context, fx models.MarketsFixtures) error {
	if err := d.Exec.UseContext(ctx, snowflake.Context{Schema: SchemaRaw}); err != nil {
		return err
	}

	inserts := []*sqlgen.Insert{
		companyInsert(d.Variant, fx.Companies),
		earningsInsert(d.Variant, fx.Earnings),
	}
	if d.Variant == VariantDualTool {
		inserts = append(inserts,
			transcriptsInsert(fx.Transcripts),
			reportsInsert(d.Variant, fx.Reports),
		)
	} else {
		inserts = append(inserts,
			eventsInsert(fx.Events),
			reportsInsert(d.Variant, fx.Reports),
			pricesInsert(fx.Prices),
		)
	}

	for _, ins := range inserts {
		if err := d.insert(ctx, ins); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) insert(ctx context.Context, ins *sqlgen.Insert) error {
	if ins.Len() == 0 {
		return nil
	}
	chunks := ins.Chunk(insertChunk)
	for i, chunk := range chunks {
		desc := fmt.Sprintf("Loading %s (%d rows)", ins.Table, chunk.Len())
		if len(chunks) > 1 {
			desc = fmt.Sprintf("Loading %s (batch %d/%d)", ins.Table, i+1, len(chunks))
		}
		if err := d.Exec.Exec(ctx, chunk.SQL(), desc); err != nil {
			return err
		}
	}
	d.metrics().Counter("rows_" + ins.Table).Add(float64(ins.Len()))
	d.logger().Info(fmt.Sprintf("✅ %s loaded", ins.Table), zap.Int("rows", ins.Len()))
	return nil
}

func (d *Deployer) createViews(ctx context.Context) error {
	if err := d.Exec.UseContext(ctx, snowflake.Context{Schema: SchemaAnalytics}); err != nil {
		return err
	}

	earnings, covered := marketsEarningsView, "ARRAY_TO_STRING(r.tickers_covered, ', ')"
	if d.Variant == VariantDualTool {
		earnings, covered = dualToolEarningsView, "r.tickers_covered"
	}

	if err := d.Exec.Exec(ctx, sqlgen.CreateView(ViewEarnings, earnings), "Creating earnings analysis semantic view"); err != nil {
		return err
	}
	thematic := fmt.Sprintf(thematicViewTemplate, covered)
	return d.Exec.Exec(ctx, sqlgen.CreateView(ViewThematic, thematic), "Creating thematic research semantic view")
}

// setupMarketplace creates a placeholder for a Marketplace economics share
func (d *Deployer) setupMarketplace(ctx context.Context) {
	log := d.logger()
	if !d.Exec.ExecBestEffort(ctx, sqlgen.CreateSchema(SchemaMarketplace, ""), "Creating "+SchemaMarketplace+" schema") {
		log.Warn("⚠️  Marketplace setup skipped")
		return
	}
	view := sqlgen.Qualify(SchemaMarketplace, ViewIndicators)
	if !d.Exec.ExecBestEffort(ctx, sqlgen.CreateView(view, indicatorsView), "Setting up marketplace data integration") {
		log.Warn("⚠️  Marketplace setup skipped")
		return
	}
	log.Info("✅ Marketplace integration configured!")
	log.Info("📝 Note: In production, replace with actual Snowflake Marketplace shared database")
}

func (d *Deployer) createSearchServices(ctx context.Context) {
	log := d.logger()
	if err := d.Exec.UseContext(ctx, snowflake.Context{Schema: SchemaSearch}); err != nil {
		log.Warn("⚠️  Search services skipped", zap.Error(err))
		return
	}

	created := 0
	for _, svc := range d.Variant.searchServices(d.warehouse()) {
		if d.Exec.ExecBestEffort(ctx, svc.SQL(), "Creating "+svc.Name) {
			created++
		}
	}
	d.metrics().Gauge("search_services_created").Set(float64(created))
	if created == 0 {
		log.Warn("⚠️  Cortex Search service creation requires appropriate privileges")
		log.Info("📝 Manual setup may be required for Cortex Search services")
		return
	}
	log.Info("✅ Cortex Search services created", zap.Int("count", created))
}

func (d *Deployer) writeAgents() error {
	files, err := WriteAgents(d.agentsDir(), d.Variant)
	if err != nil {
		return err
	}
	d.logger().Info("✅ Agent configurations created", zap.String("dir", d.agentsDir()), zap.Int("files", len(files)))
	return nil
}

func (d *Deployer) warehouse() string {
	if d.Warehouse != "" {
		return d.Warehouse
	}
	return d.Variant.DefaultWarehouse()
}

func (d *Deployer) agentsDir() string {
	if d.AgentsDir != "" {
		return d.AgentsDir
	}
	return DefaultAgentsDir
}

func (d *Deployer) logger() *zap.Logger {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d.Logger
}

func (d *Deployer) steps() *observability.StepLogger {
	if d.Steps == nil {
		d.Steps = observability.NewStepLogger(d.logger())
	}
	return d.Steps
}

func (d *Deployer) metrics() *observability.Metrics {
	if d.Metrics == nil {
		d.Metrics = observability.NewMetrics()
	}
	return d.Metrics
}

// priceRange returns the first and last price dates. Dates are YYYY-MM-DD so
// string order is date order.
func priceRange(rows []models.StockPrice) (string, string) {
	var from, to string
	for _, p := range rows {
		if from == "" || p.PriceDate < from {
			from = p.PriceDate
		}
		if p.PriceDate > to {
			to = p.PriceDate
		}
	}
	return from, to
}
