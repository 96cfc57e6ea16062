package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/jude/internal/config"
	"github.com/John-Robertt/jude/internal/provider"
	"github.com/John-Robertt/jude/internal/provider/justia"
)

// version 由构建时 -ldflags "-X main.version=..." 注入。
var version = "dev"

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(exitFail)
	}

	c := &cli{
		cwd:       cwd,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
	}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// cli 持有一次命令执行的 IO 与生效配置（便于在测试中以进程内方式运行）。
type cli struct {
	cwd       string
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool

	eff config.EffectiveConfig
	log *slog.Logger
}

// exitError 携带退出码；其余 error（cobra 的参数/子命令错误）一律视为用法错误。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func failf(format string, args ...any) error {
	return &exitError{code: exitFail, err: fmt.Errorf(format, args...)}
}

// silentFail 表示失败原因已经输出过（例如 report 中的失败条目），只需要非零退出码。
var silentFail = &exitError{code: exitFail}

func (c *cli) run(ctx context.Context, args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(c.stderr, "错误：%v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(c.stderr, "参数错误：%v\n\n", err)
	fmt.Fprintf(c.stderr, "使用 \"jude --help\" 查看用法。\n")
	return exitUsage
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jude",
		Short: "按法院与年份批量下载 law.justia.com 上的判决 PDF",
		Long: `jude 从 law.justia.com 发现法院目录，并按 (法院, 年份) 下载判决 PDF：

  data/court_opinions/<court>/<year>/<citation>.pdf

配置来源（优先级从高到低）：命令行参数 > JUDE_* 环境变量 > jude.yaml|json|toml > 默认值。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help":
				return nil
			}
			return c.loadConfig(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "配置文件路径（默认查找 ./jude.yaml|json|toml）")
	root.PersistentFlags().String("catalog", "", "法院目录文件（默认 "+config.DefaultCatalog+"）")
	root.PersistentFlags().String("log-level", "", "日志级别：debug|info|warn|error")

	root.AddCommand(
		c.catalogCmd(),
		c.searchCmd(),
		c.scrapeCmd(),
		c.versionCmd(),
	)
	return root
}

// loadConfig 合并配置并初始化日志。只有显式给出的 flag 才参与覆盖。
func (c *cli) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	args := config.CLIArgs{}
	args.ConfigFile, _ = flags.GetString("config")
	if flags.Changed("catalog") {
		args.Catalog, _ = flags.GetString("catalog")
		args.CatalogSet = true
	}
	if flags.Changed("log-level") {
		args.LogLevel, _ = flags.GetString("log-level")
		args.LogLevelSet = true
	}
	if f := flags.Lookup("root"); f != nil && f.Changed {
		args.Root = f.Value.String()
		args.RootSet = true
	}
	if f := flags.Lookup("concurrency"); f != nil && f.Changed {
		args.Concurrency, _ = flags.GetInt("concurrency")
		args.ConcurrencySet = true
	}

	eff, err := config.LoadEffective(c.cwd, args)
	if err != nil {
		return &exitError{code: exitFail, err: err}
	}
	c.eff = eff
	c.log = newLogger(c.stderr, eff.LogLevel)
	slog.SetDefault(c.log)

	if eff.ConfigFile != "" {
		c.log.Debug("using config file", "path", eff.ConfigFile)
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}

// markup 从注册表里取出配置指定的页面适配器。
func (c *cli) markup() (provider.Markup, error) {
	reg, err := provider.NewRegistry(justia.Provider{})
	if err != nil {
		return nil, err
	}
	m, ok := reg.Get(c.eff.Provider)
	if !ok {
		return nil, fmt.Errorf("未知 provider：%q（可选：%v）", c.eff.Provider, reg.Names())
	}
	return m, nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "jude %s\n", version)
		},
	}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
