package snowflake

import (
	"context"
	"path/filepath"
	"time"

	"flakelab/internal/sqlgen"
	"flakelab/pkg/errors"
)

// BulkLoadOptions configures a PUT plus COPY INTO load
type BulkLoadOptions struct {
	// Table is the fully qualified target table
	Table string
	// Stage is the fully qualified internal stage, without the @
	Stage string
	// Format is the named file format
	Format          string
	Files           []string
	ContinueOnError bool
	PurgeAfterLoad  bool
}

// BulkLoadResult contains results of a bulk load
type BulkLoadResult struct {
	Table       string
	FilesStaged int
	RowsLoaded  int64
	Duration    time.Duration
}

// BulkLoad uploads local files to a stage and copies them into a table by
// column name. Only the uploaded files are matched.
func BulkLoad(ctx context.Context, exec Executor, options BulkLoadOptions) (*BulkLoadResult, error) {
	if options.Table == "" || options.Stage == "" || options.Format == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bulk load needs a table, stage and file format")
	}
	if len(options.Files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no files to load").
			WithContext("table", options.Table)
	}

	start := time.Now()
	result := &BulkLoadResult{Table: options.Table}

	for _, file := range options.Files {
		if err := exec.Exec(ctx, sqlgen.Put(file, options.Stage), "Staging "+filepath.Base(file)); err != nil {
			return result, errors.Wrap(err, errors.ErrCodeStagingFailed, "Failed to PUT file").
				WithContext("file", file).
				WithContext("stage", options.Stage)
		}
		result.FilesStaged++
	}

	onError := "ABORT_STATEMENT"
	if options.ContinueOnError {
		onError = "CONTINUE"
	}
	load := sqlgen.CopyInto{
		Table:       options.Table,
		Stage:       options.Stage,
		Format:      options.Format,
		Pattern:     filePattern(options.Files),
		OnError:     onError,
		Purge:       options.PurgeAfterLoad,
		MatchByName: true,
	}

	loaded, err := exec.QuerySum(ctx, load.SQL(), "rows_loaded")
	if err != nil {
		return result, err
	}
	result.RowsLoaded = loaded
	result.Duration = time.Since(start)
	return result, nil
}

// filePattern matches the base names of files regardless of stage prefix.
// Names are generated, so dots are left unescaped.
func filePattern(files []string) string {
	if len(files) == 1 {
		return ".*" + filepath.Base(files[0])
	}
	pattern := ".*("
	for i, f := range files {
		if i > 0 {
			pattern += "|"
		}
		pattern += filepath.Base(f)
	}
	return pattern + ")"
}
