// Command aistore runs an interactive REPL over the storage engine: each
// line of stdin is executed as one SQL statement until EOF or EXIT.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"aistore/buffer"
	"aistore/catalog"
	"aistore/config"
	"aistore/executor"
	"aistore/segment"
	"aistore/tablespace"
	"aistore/vfs"

	"github.com/sirupsen/logrus"
)

func main() {
	dataDir := flag.String("data-dir", "./aistore-data", "directory holding tablespaces, catalog and page files")
	configPath := flag.String("config", "", "optional config file (JSON or key=value)")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg := config.NewConfig(*dataDir)
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	exec, cleanup, err := bootstrap(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start aistore")
	}
	defer cleanup()

	if err := runREPL(exec, os.Stdin); err != nil {
		logrus.WithError(err).Fatal("repl exited with error")
	}
}

func bootstrap(cfg *config.Config) (*executor.Executor, func(), error) {
	v := vfs.NewLocalFS()

	tsMgr := tablespace.NewManager(v, cfg.DataDir)
	tablespaceID, err := tsMgr.OpenTablespace("main")
	if err != nil {
		tablespaceID, err = tsMgr.CreateTablespace("main", tablespace.Config{
			InitialFileSize: cfg.InitialTablespaceSize(),
			AutoExtendSize:  cfg.AutoExtendSize(),
		})
		if err != nil {
			return nil, nil, err
		}
	}

	segMgr := segment.NewManager(tsMgr)
	pool := buffer.New(cfg.BufferPoolSize, v, cfg.DataDir)

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	exec := executor.New(cat, segMgr, pool, tablespaceID)
	cleanup := func() {
		if err := pool.FlushAll(); err != nil {
			logrus.WithError(err).Error("failed to flush buffer pool on shutdown")
		}
	}
	return exec, cleanup, nil
}

func runREPL(exec *executor.Executor, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "EXIT") || strings.EqualFold(line, "QUIT") {
			return nil
		}
		out, err := exec.Execute(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Fprint(os.Stdout, out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(os.Stdout)
		}
	}
	return scanner.Err()
}
