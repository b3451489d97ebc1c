package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"camera-downloader/internal/config"
	"camera-downloader/internal/extractor"
	"camera-downloader/internal/logger"
	"camera-downloader/internal/naming"
	"camera-downloader/internal/pathutil"
	"camera-downloader/internal/scanner"
	"camera-downloader/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidSource is returned when the source path is missing or not a directory.
	ErrInvalidSource = errors.New("source directory does not exist or is not a directory")

	// ErrFilesFailed is returned after a complete non-strict run in which at
	// least one file could not be imported.
	ErrFilesFailed = errors.New("some files could not be imported")
)

// Operation names recorded with per-file failures.
const (
	OpScan           = "scan"
	OpDateExtraction = "date_extraction"
	OpBucketCreation = "bucket_creation"
	OpCopy           = "copy_file"
)

// Organizer copies camera images into date buckets.
type Organizer struct {
	config    *config.Config
	fs        afero.Fs
	logger    *logrus.Logger
	stats     *statistics.Statistics
	extractor extractor.DateExtractor
}

// Result is the outcome of importing one source file.
type Result struct {
	SourcePath  string
	CaptureTime time.Time
	Target      naming.Target
	Bytes       int64
	Overwrote   bool
	DryRun      bool
	InPlace     bool   // source already sits at its destination
	Operation   string // failing stage, empty on success
	Err         error
}

// OK reports whether the file was imported (or planned, in dry-run mode).
func (r Result) OK() bool {
	return r.Err == nil
}

// NewOrganizer returns a new Organizer.
func NewOrganizer(
	cfg *config.Config,
	fs afero.Fs,
	logger *logrus.Logger,
	stats *statistics.Statistics,
	dateExtractor extractor.DateExtractor,
) *Organizer {
	return &Organizer{
		config:    cfg,
		fs:        fs,
		logger:    logger,
		stats:     stats,
		extractor: dateExtractor,
	}
}

// Run imports every matching image under the source directory, one file at a
// time. Each Result is passed to observe, when non-nil, as soon as the file is
// done; nothing is retained. In strict mode the first failing file aborts the
// run. Otherwise failures are logged and skipped, and ErrFilesFailed is
// returned at the end if any occurred. The context is checked between files.
func (o *Organizer) Run(ctx context.Context, observe func(Result)) error {
	o.logger.Info("Starting import")
	o.stats.StartTime = time.Now()

	if err := o.prepareDestination(); err != nil {
		return err
	}

	src := o.config.SourceDirectory
	if !pathutil.ValidateSourceDirectory(o.fs, src) {
		return fmt.Errorf("%w: %s", ErrInvalidSource, src)
	}

	if o.config.Processing.DryRun {
		o.logger.Info("Running in dry-run mode - no files will be copied")
	}

	pattern := pathutil.CaseInsensitivePattern(o.config.ImagePattern)
	dst := o.config.DestinationDirectory
	nested := filepath.Clean(dst) != filepath.Clean(src) && isWithin(dst, src)

	for path, err := range scanner.Images(o.fs, src, pattern) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("import interrupted: %w", ctxErr)
		}

		if err != nil {
			o.logger.WithField("operation", OpScan).Warnf("Error scanning source: %v", err)
			o.stats.IncrementFilesWithErrors()
			o.stats.AddError(src, OpScan, err.Error())
			if o.config.Processing.Strict {
				return fmt.Errorf("import aborted: %w", err)
			}
			continue
		}

		if nested && isWithin(path, dst) {
			o.logger.Debugf("Skipping file inside destination: %s", path)
			continue
		}

		o.stats.IncrementFilesFound()
		res := o.processFile(path)
		if observe != nil {
			observe(res)
		}

		if res.Err != nil && o.config.Processing.Strict {
			return fmt.Errorf("import aborted at %s: %w", path, res.Err)
		}
	}

	o.stats.Finalize()
	o.logger.Info("Done.")

	if n := o.stats.GetFilesWithErrors(); n > 0 {
		return fmt.Errorf("%w: %d error(s)", ErrFilesFailed, n)
	}
	return nil
}

// prepareDestination creates the destination root. An existing root is only
// reported.
func (o *Organizer) prepareDestination() error {
	dst := o.config.DestinationDirectory

	exists, err := afero.DirExists(o.fs, dst)
	if err != nil {
		return fmt.Errorf("failed to stat destination directory: %w", err)
	}
	if exists {
		o.logger.Info("Destination directory already exists!")
		return nil
	}

	if o.config.Processing.DryRun {
		o.logger.Infof("DRY-RUN: Would create destination directory %s", dst)
		return nil
	}

	if _, err := pathutil.EnsureDirectory(o.fs, dst); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	o.logger.Debugf("Created destination directory: %s", dst)
	return nil
}

// processFile imports a single file.
func (o *Organizer) processFile(path string) Result {
	res := Result{SourcePath: path, DryRun: o.config.Processing.DryRun}
	o.logger.Debugf("Processing file: %s", path)

	date, err := o.extractor.ExtractDate(path)
	if err != nil {
		o.stats.IncrementFilesWithoutDates()
		return o.fail(res, OpDateExtraction, err)
	}
	res.CaptureTime = date
	res.Target = naming.Plan(o.config.DestinationDirectory, path, date)

	if filepath.Clean(path) == filepath.Clean(res.Target.Path) {
		res.InPlace = true
		o.logger.Debugf("Already in place: %s", path)
		return res
	}

	if res.DryRun {
		o.logger.Infof("DRY-RUN: Would copy %s -> %s", path, res.Target.Path)
		o.stats.IncrementFilesPlanned()
		return res
	}

	if err := o.createBucket(res.Target.BucketDir); err != nil {
		return o.fail(res, OpBucketCreation, err)
	}

	if exists, _ := afero.Exists(o.fs, res.Target.Path); exists {
		res.Overwrote = true
		o.stats.IncrementFilesOverwritten()
		o.logger.Debugf("Overwriting existing file: %s", res.Target.Path)
	}

	n, err := o.copyFile(path, res.Target.Path)
	if err != nil {
		return o.fail(res, OpCopy, err)
	}
	res.Bytes = n

	o.stats.IncrementFilesCopied()
	o.stats.AddBytesCopied(n)
	logger.WithFileOperation(o.logger, path, OpCopy).
		WithField("destination", res.Target.Path).
		Infof("Copied %s.", res.Target.FileName)
	return res
}

func (o *Organizer) fail(res Result, operation string, err error) Result {
	res.Operation = operation
	res.Err = err
	o.stats.IncrementFilesWithErrors()
	o.stats.AddError(res.SourcePath, operation, err.Error())
	logger.WithFileOperation(o.logger, res.SourcePath, operation).Errorf("Could not import file: %v", err)
	return res
}

// createBucket creates a date bucket directory if it does not exist yet.
func (o *Organizer) createBucket(dirPath string) error {
	exists, _ := afero.DirExists(o.fs, dirPath)
	if exists {
		return nil
	}
	if _, err := pathutil.EnsureDirectory(o.fs, dirPath); err != nil {
		return err
	}
	o.stats.IncrementBucketsCreated()
	o.logger.Debugf("Created directory: %s", dirPath)
	return nil
}

// copyFile copies a file from source to destination, truncating any existing
// destination. Both handles are closed on every path.
func (o *Organizer) copyFile(sourcePath, destPath string) (int64, error) {
	sourceFile, err := o.fs.Open(sourcePath)
	if err != nil {
		return 0, err
	}
	defer sourceFile.Close()

	destFile, err := o.fs.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer destFile.Close()

	n, err := io.Copy(destFile, sourceFile)
	if err != nil {
		return n, err
	}
	if err := destFile.Close(); err != nil {
		return n, err
	}

	if o.config.Processing.PreserveMode {
		sourceInfo, err := sourceFile.Stat()
		if err != nil {
			return n, err
		}
		if err := o.fs.Chmod(destPath, sourceInfo.Mode()); err != nil {
			return n, err
		}
	}

	return n, nil
}

// isWithin reports whether path is root or lies below it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
