package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"camera-downloader/internal/config"
	"camera-downloader/internal/extractor"
	"camera-downloader/internal/logger"
	"camera-downloader/internal/naming"
	"camera-downloader/internal/organizer"
	"camera-downloader/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	sourceDir string
	destDir   string
	strict    bool
	dryRun    bool
	reader    string
	verbose   bool
	quiet     bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "camera-downloader",
	Short: "Copy camera photos into date-named folders",
	Long: `camera-downloader copies digital camera photos to a destination directory,
sorting them into folders named after their capture date (YYYYMMDD) and
renaming them so that the new file name holds the date and the image number:

  IMG_0421.JPG taken 2023-03-15  ->  <dst>/20230315/20230315_0421.jpg

The source directory is searched recursively for .jpg files (any case).
The capture date is read from the EXIF DateTime tag. Existing files at the
destination are overwritten.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), cmd)
	},
}

// testExifCmd tests EXIF extraction on a specific file.
var testExifCmd = &cobra.Command{
	Use:   "test-exif <file>",
	Short: "Show the capture date and destination name of a single file",
	Long: `Reads the EXIF DateTime tag of a single file and prints the capture date
together with the bucket and file name it would be imported as.
This is useful for debugging date extraction issues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTestExif(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output, including the completion notice and the summary")
	rootCmd.PersistentFlags().StringVar(&reader, "reader", extractor.ReaderGoExif, "metadata reader: goexif or exiftool")

	rootCmd.Flags().StringVarP(&sourceDir, "src", "s", "", "the source directory that will be (recursively) searched for image files")
	rootCmd.Flags().StringVarP(&destDir, "dst", "d", "", "the destination directory that will contain date-named directories of photos")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "abort the whole run on the first file that cannot be imported")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be copied without writing anything")
	_ = rootCmd.MarkFlagRequired("src")
	_ = rootCmd.MarkFlagRequired("dst")

	rootCmd.AddCommand(testExifCmd)
}

// runImport executes the import.
func runImport(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	fs := afero.NewOsFs()
	stats := statistics.NewStatistics()

	dateExtractor, err := extractor.New(cfg.Metadata.Reader, fs, log)
	if err != nil {
		return err
	}
	defer dateExtractor.Close()

	org := organizer.NewOrganizer(cfg, fs, log, stats, dateExtractor)
	err = org.Run(ctx, nil)

	if (err == nil || errors.Is(err, organizer.ErrFilesFailed)) && !quiet {
		fmt.Println("\n" + stats.GetSummary())
		if stats.GetFilesWithErrors() > 0 {
			fmt.Println("\n" + stats.GetErrorSummary())
		}
	}

	return err
}

// runTestExif prints the capture date read from a single file.
func runTestExif(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	fmt.Printf("Testing EXIF extraction for: %s\n", filePath)

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	dateExtractor, err := extractor.New(reader, afero.NewOsFs(), log)
	if err != nil {
		return err
	}
	defer dateExtractor.Close()

	date, err := dateExtractor.ExtractDate(filePath)
	if err != nil {
		fmt.Printf("Error extracting date: %v\n", err)
		return err
	}

	fmt.Printf("Extracted date: %s\n", date.Format("2006-01-02 15:04:05"))
	fmt.Printf("Bucket: %s\n", naming.BucketName(date))
	fmt.Printf("File name: %s\n", naming.FileName(date, filepath.Base(filePath)))
	return nil
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()

	bindings := map[string]string{
		"source_directory":      "src",
		"destination_directory": "dst",
		"processing.strict":     "strict",
		"processing.dry_run":    "dry-run",
		"metadata.reader":       "reader",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" && !quiet {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
	}

	if cfg.SourceDirectory, err = filepath.Abs(cfg.SourceDirectory); err != nil {
		return nil, err
	}
	// afero.Walk does not descend into a symlinked root.
	// A missing source is left as is and rejected by the organizer.
	if resolved, err := filepath.EvalSymlinks(cfg.SourceDirectory); err == nil {
		cfg.SourceDirectory = resolved
	}
	if cfg.DestinationDirectory, err = filepath.Abs(cfg.DestinationDirectory); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.DefaultConfig()
	if cfg.Logging.Level != "" {
		loggerCfg.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		loggerCfg.Format = cfg.Logging.Format
	}
	if cfg.Logging.FilePath != "" {
		loggerCfg.FilePath = cfg.Logging.FilePath
		loggerCfg.MaxSize = cfg.Logging.MaxSize
		loggerCfg.MaxBackups = cfg.Logging.MaxBackups
		loggerCfg.MaxAge = cfg.Logging.MaxAge
		loggerCfg.Compress = cfg.Logging.Compress
	}
	loggerCfg.Console = !quiet

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
