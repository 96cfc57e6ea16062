package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/jude/internal/app/catalog"
	"github.com/John-Robertt/jude/internal/app/scrape"
	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/infra/cache"
	"github.com/John-Robertt/jude/internal/infra/httpx"
	"github.com/John-Robertt/jude/internal/infra/robots"
)

func (c *cli) client() (*http.Client, error) {
	hc, err := httpx.NewClient(httpx.Options{
		ProxyURL:  c.eff.ProxyURL,
		UserAgent: c.eff.UserAgent,
		Timeout:   c.eff.Timeout,
		RateLimit: c.eff.RateLimit,
		RetryMax:  c.eff.RetryMax,
	})
	if err != nil {
		return nil, fmt.Errorf("proxy.url 无效：%w", err)
	}
	return hc, nil
}

func (c *cli) catalogCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "抓取站点索引页，构建并保存法院目录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.eff.Catalog
			if strings.TrimSpace(out) != "" {
				path = absFrom(c.cwd, out)
			}
			cat, err := c.buildCatalog(cmd, path)
			if err != nil {
				return err
			}

			counts := cat.CountByCategory()
			for _, k := range []string{domain.CategoryFederalAppellate, domain.CategoryFederalDistrict, domain.CategoryState} {
				fmt.Fprintf(c.stdout, "%s: %d\n", k, counts[k])
			}
			fmt.Fprintf(c.stdout, "total: %d\n", cat.Len())
			fmt.Fprintf(c.stdout, "catalog: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "目录文件输出路径（默认使用配置中的 catalog）")
	return cmd
}

// absFrom 以 cwd 为基准把 p 转为绝对路径。
func absFrom(cwd, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

// buildCatalog 构建目录并原子写入 path。
func (c *cli) buildCatalog(cmd *cobra.Command, path string) (domain.Catalog, error) {
	m, err := c.markup()
	if err != nil {
		return domain.Catalog{}, &exitError{code: exitFail, err: err}
	}
	hc, err := c.client()
	if err != nil {
		return domain.Catalog{}, &exitError{code: exitFail, err: err}
	}

	started := time.Now()
	c.log.Info("building catalog", "base_url", c.eff.BaseURL)
	cat, err := catalog.Build(cmd.Context(), hc, m, c.eff.BaseURL, c.log)
	if err != nil {
		return domain.Catalog{}, &exitError{code: exitFail, err: err}
	}
	if err := cache.New(path, false).WriteCatalog(cat, c.eff.BaseURL, time.Now()); err != nil {
		return domain.Catalog{}, failf("写入目录文件失败：%v", err)
	}
	c.log.Info("catalog written", "path", path, "courts", cat.Len(), "elapsed", time.Since(started).Round(time.Millisecond))
	return cat, nil
}

func (c *cli) searchCmd() *cobra.Command {
	var build bool
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "在法院目录中按子串（忽略大小写）查找法院",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}

			cat, _, ok, err := cache.New(c.eff.Catalog, true).ReadCatalog()
			if err != nil {
				return failf("读取目录文件失败：%v", err)
			}
			if !ok {
				if !build {
					return failf("目录文件不存在：%s（先运行 \"jude catalog\"，或加 --build）", c.eff.Catalog)
				}
				cat, err = c.buildCatalog(cmd, c.eff.Catalog)
				if err != nil {
					return err
				}
			}

			for _, id := range catalog.Search(cat, text) {
				fmt.Fprintln(c.stdout, id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "目录文件不存在时先构建")
	return cmd
}

func (c *cli) scrapeCmd() *cobra.Command {
	var (
		court      string
		yearsRaw   string
		noValidate bool
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "按法院与年份下载判决 PDF",
		Example: `  jude scrape --court /cases/federal/appellate-courts/ca1/ --years 2019,2020
  jude scrape --court cases/california/supreme-court --years 2015-2017 --concurrency 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseCourtID(court)
			if err != nil {
				return fmt.Errorf("--court：%w", err)
			}
			years, err := parseYears(yearsRaw)
			if err != nil {
				return fmt.Errorf("--years：%w", err)
			}

			m, err := c.markup()
			if err != nil {
				return &exitError{code: exitFail, err: err}
			}
			hc, err := c.client()
			if err != nil {
				return &exitError{code: exitFail, err: err}
			}

			opts := scrape.Options{
				Client:      hc,
				Markup:      m,
				BaseURL:     c.eff.BaseURL,
				Root:        c.eff.Root,
				Concurrency: c.eff.Concurrency,
				Logger:      c.log,
			}
			if c.eff.RespectRobots {
				opts.Robots = robots.New(hc, c.eff.UserAgent)
			}
			if !noValidate {
				cat, _, ok, err := cache.New(c.eff.Catalog, true).ReadCatalog()
				if err != nil {
					return failf("读取目录文件失败：%v", err)
				}
				if ok {
					opts.Catalog = &cat
				} else {
					c.log.Warn("catalog file not found, court not validated", "path", c.eff.Catalog)
				}
			}

			c.log.Info("scrape starting",
				"court", id,
				"root", c.eff.Root,
				"concurrency", c.eff.Concurrency,
				"proxy", formatProxy(c.eff.ProxyURL),
				"robots", c.eff.RespectRobots,
			)
			ui := newConsoleUI(c.stderr)
			rr, runErr := scrape.Run(cmd.Context(), opts, id, years, ui)
			ui.Close()

			c.emitReport(rr)
			if runErr != nil {
				return &exitError{code: exitFail, err: runErr}
			}
			if rr.Summary.Failed > 0 {
				return silentFail
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&court, "court", "", "法院 ID，例如 /cases/federal/appellate-courts/ca1/（必填）")
	cmd.Flags().StringVar(&yearsRaw, "years", "", "年份列表：2019,2020 或区间 2015-2017（必填）")
	cmd.Flags().Int("concurrency", 0, "单个年度内的下载并发数 [1, 32]（默认 1）")
	cmd.Flags().String("root", "", "PDF 输出根目录（默认 data/court_opinions）")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "不使用法院目录校验 --court")
	_ = cmd.MarkFlagRequired("court")
	_ = cmd.MarkFlagRequired("years")
	return cmd
}

// emitReport：stdout 是终端时只打印摘要；否则 stdout 必须且仅输出一个 RunReport JSON。
func (c *cli) emitReport(rr domain.RunReport) {
	s := rr.Summary
	line := fmt.Sprintf("完成：collected=%d dropped=%d downloaded=%d skipped=%d failed=%d",
		s.Collected, s.Dropped, s.Downloaded, s.Skipped, s.Failed,
	)
	if c.stdoutTTY {
		fmt.Fprintln(c.stdout, line)
		return
	}
	enc := json.NewEncoder(c.stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(c.stderr, line)
}

// parseYears 解析 "2019,2020,2015-2017"：保持输入顺序，重复年份只保留一次。
func parseYears(raw string) ([]int, error) {
	out := make([]int, 0, 8)
	seen := make(map[int]struct{})
	add := func(y int) error {
		if y < scrape.MinYear || y > scrape.MaxYear {
			return fmt.Errorf("年份超出范围 [%d, %d]：%d", scrape.MinYear, scrape.MaxYear, y)
		}
		if _, ok := seen[y]; ok {
			return nil
		}
		seen[y] = struct{}{}
		out = append(out, y)
		return nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			y, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("非法年份：%q", part)
			}
			if err := add(y); err != nil {
				return nil, err
			}
			continue
		}

		from, err1 := strconv.Atoi(strings.TrimSpace(lo))
		to, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("非法年份区间：%q", part)
		}
		if from > to {
			return nil, fmt.Errorf("年份区间起点大于终点：%q", part)
		}
		for y := from; y <= to; y++ {
			if err := add(y); err != nil {
				return nil, err
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("至少需要一个年份")
	}
	return out, nil
}
