package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sfvalid "github.com/btv-commissioning/sfvalid_go/pkg"
	sqlx "github.com/jmoiron/sqlx"
)

var dbConn *sqlx.DB
var configuration sfvalid.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	sfvalid.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", *configFilename), "main")
		printConfiguration(configuration, logger)
	}

	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	if !configuration.NoDB {
		var err error
		dbConn, err = sfvalid.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()
	}

	calib, err := loadCalibrations()
	if err != nil {
		return err
	}
	lumiMask, err := loadLumiMask()
	if err != nil {
		return err
	}
	defs, err := loadHistograms()
	if err != nil {
		return err
	}

	channel, err := sfvalid.NewChannel(configuration.Channel, configuration.Campaign)
	if err != nil {
		return err
	}
	proc, err := sfvalid.NewProcessor(configuration, channel, defs, calib, lumiMask)
	if err != nil {
		return err
	}

	source := fileSource(configuration.FilesIn, configuration.MaxBatches)
	result, err := sfvalid.RunBatches(context.Background(), proc, source, configuration.NumWorkers)
	if err != nil {
		return fmt.Errorf("error processing batches: %w", err)
	}

	for _, dataset := range result.Datasets() {
		out := result[dataset]
		logger.Info(fmt.Sprintf("Dataset %s: sumw %g, %d histograms", dataset, out.SumW, len(out.Histograms)), "main")
	}

	writer, err := sfvalid.NewWriter(configuration.FileOut, configuration.CompressionLevel)
	if err != nil {
		return err
	}
	if err := writer.WriteResult(result); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", configuration.FileOut, err)
	}

	logger.Info(fmt.Sprintf("Total time: %d ms", time.Since(start).Milliseconds()), "main")
	return nil
}

// loadCalibrations prefers an explicit calibration file over the database.
// Without corrections no tables are needed.
func loadCalibrations() (*sfvalid.Calibrations, error) {
	if !configuration.IsCorr {
		return nil, nil
	}
	if configuration.CalibrationFile != "" {
		return sfvalid.LoadCalibrationFile(configuration.CalibrationFile, configuration.Campaign)
	}
	if dbConn == nil {
		return nil, fmt.Errorf("corrections need a calibration file or a database")
	}
	return sfvalid.LoadCalibrations(dbConn, configuration.Campaign, VerbosityLevel)
}

func loadLumiMask() (sfvalid.LumiMask, error) {
	if configuration.LumiMaskFile != "" {
		return sfvalid.LoadLumiMaskFile(configuration.LumiMaskFile)
	}
	if dbConn != nil {
		return sfvalid.LoadLumiMaskFromDB(dbConn, configuration.Campaign, VerbosityLevel)
	}
	logger.Warn("No lumi mask available, real data events will be rejected", "main")
	return nil, nil
}

func loadHistograms() ([]*sfvalid.HistogramDefinition, error) {
	var schema *sfvalid.Schema
	var err error
	if configuration.SchemaFile != "" {
		schema, err = sfvalid.LoadSchema(configuration.SchemaFile)
	} else {
		schema, err = sfvalid.BuiltinSchema(configuration.Channel)
	}
	if err != nil {
		return nil, err
	}
	return schema.Resolve()
}
