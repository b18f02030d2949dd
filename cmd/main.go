package main

import (
	"fmt"
	"os"
	"path/filepath"

	"memwatch/internal/config"
	"memwatch/internal/logging"
	"memwatch/internal/model"
	"memwatch/internal/monitor"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load(nil)

	// the terminal belongs to the UI, so logs always go to a file
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "memwatch.log")
	}
	logger, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	memReader, err := monitor.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to create memory reader", zap.Error(err))
		fmt.Printf("Error creating memory reader: %v\n", err)
		os.Exit(1)
	}
	defer memReader.Close()

	p := tea.NewProgram(model.NewModel(memReader))
	unsubscribe := model.Subscribe(memReader, p.Send)
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
