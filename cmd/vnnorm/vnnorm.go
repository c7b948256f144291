package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/crawl/go-vnnorm/fnotify"
	"github.com/crawl/go-vnnorm/rules"
	"github.com/crawl/go-vnnorm/stringnorm"
	"github.com/crawl/go-vnnorm/text"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	cmd     = "vnnorm"
	version = "1.0.0"
)

var cmdError error

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "cannot read .env:", err)
	}
	app := newApp()
	app.Execute()
	if cmdError != nil {
		os.Exit(1)
	}
}

func newApp() *cobra.Command {
	app := &cobra.Command{
		Use:   cmd,
		Short: cmd + " canonicalizes Vietnamese accent placement",
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if logPath := stringFlag(c, "log"); logPath != "" {
				if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
					fmt.Fprintln(os.Stderr, "mkdir", logPath, "failed:", err)
					return
				}
				log.SetOutput(&lumberjack.Logger{
					Filename:   logPath,
					MaxSize:    10,
					MaxBackups: 10,
					MaxAge:     15,
				})
			}
		},
	}
	defineAppFlags(app)
	defineCommands(app)
	return app
}

func defineAppFlags(app *cobra.Command) {
	f := app.PersistentFlags()
	f.String("log", os.Getenv("VNNORM_LOG"), "log file path (default stderr)")
	f.String("root", os.Getenv(rules.RootEnv), "directory searched for rule files before the built-in rules")
	f.String("config", os.Getenv("VNNORM_CONFIG"), "configuration file (.yml or .properties) under --root")
	f.StringSlice("rules", nil, "rule source identifiers, applied in order (default: config normalizationRules, then "+rules.DefaultID+")")
	f.Bool("nfc", false, "compose rules and input to Unicode NFC before matching")
	f.Int("cache", 0, "remember up to this many normalized strings per rule source")
	dbFlags(f)
}

func dbFlags(f *pflag.FlagSet) {
	f.String("db", text.FirstNotEmpty(os.Getenv("VNNORM_DBNAME"), "vnnorm"), "postgres database holding pg: rule tables")
	f.String("user", text.FirstNotEmpty(os.Getenv("VNNORM_DBUSER"), "vnnorm"), "postgres user")
	f.String("password", os.Getenv("VNNORM_DBPASS"), "postgres password")
	f.String("host", text.FirstNotEmpty(os.Getenv("VNNORM_DBHOST"), "localhost"), "postgres host")
	f.Int("port", text.ParseInt(os.Getenv("VNNORM_DBPORT"), 0), "postgres port")
}

func reportError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		cmdError = err
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func boolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		fatal("bad boolean value for " + name + ": " + err.Error())
	}
	return val
}

func stringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fatal("bad string value for " + name + ": " + err.Error())
	}
	return val
}

func stringSliceFlag(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		fatal("bad string list value for " + name + ": " + err.Error())
	}
	return val
}

func intFlag(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		fatal("bad int value for " + name + ": " + err.Error())
	}
	return val
}

func defineCommands(app *cobra.Command) {
	app.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show " + cmd + " version",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), cmd, version)
		},
	})

	app.AddCommand(&cobra.Command{
		Use:   "normalize [text...]",
		Short: "normalize each argument, or each line of stdin if there are none",
		Run: func(c *cobra.Command, args []string) {
			reportError(normalizeText(c, args))
		},
	})

	app.AddCommand(&cobra.Command{
		Use:   "rules",
		Short: "print the loaded rules of each rule source",
		Run: func(c *cobra.Command, args []string) {
			reportError(printRules(c))
		},
	})

	app.AddCommand(&cobra.Command{
		Use:   "check [rule-source...]",
		Short: "report malformed lines in rule sources (default: the configured sources)",
		Run: func(c *cobra.Command, args []string) {
			reportError(checkRules(c, args))
		},
	})

	app.AddCommand(setFlags(func(f *pflag.FlagSet) {
		f.String("suffix", ".norm", "suffix of the normalized copy written next to each file")
		f.Bool("initial", true, "normalize every file once before waiting for changes")
	}, &cobra.Command{
		Use:   "watch file...",
		Short: "rewrite normalized copies of files whenever they change",
		Args:  cobra.MinimumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			reportError(watchFiles(c, args))
		},
	}))
}

func setFlags(flagSetter func(*pflag.FlagSet), cmd *cobra.Command) *cobra.Command {
	flagSetter(cmd.Flags())
	return cmd
}

func normalizeText(c *cobra.Command, args []string) error {
	norm, closeNorm, err := loadNormalizer(c)
	if err != nil {
		return err
	}
	defer closeNorm()
	out := bufio.NewWriter(c.OutOrStdout())
	defer out.Flush()
	if len(args) > 0 {
		for _, arg := range args {
			fmt.Fprintln(out, stringnorm.NormalizeNoErr(norm, arg))
		}
		return nil
	}
	return normalizeLines(norm, c.InOrStdin(), out)
}

func normalizeLines(norm stringnorm.Normalizer, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(out, stringnorm.NormalizeNoErr(norm, scanner.Text())); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printRules(c *cobra.Command) error {
	cfg, err := appConfig(c)
	if err != nil {
		return err
	}
	s, err := loadSession(c, cfg)
	if err != nil {
		return err
	}
	defer s.close()
	out := bufio.NewWriter(c.OutOrStdout())
	defer out.Flush()
	for _, id := range s.ids {
		table, err := s.table(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s (%d rules)\n", id, table.Len())
		for _, pair := range table.Pairs() {
			fmt.Fprintf(out, "%s\t%s\n", pair[0], pair[1])
		}
	}
	return nil
}

func watchFiles(c *cobra.Command, files []string) error {
	norm, closeNorm, err := loadNormalizer(c)
	if err != nil {
		return err
	}
	defer closeNorm()
	suffix := stringFlag(c, "suffix")
	rewrite := func(file string) {
		if err := normalizeFile(norm, file, file+suffix); err != nil {
			log.Println("normalize", file, "failed:", err)
			return
		}
		log.Println("normalized", file, "=>", file+suffix)
	}
	if boolFlag(c, "initial") {
		for _, file := range files {
			rewrite(file)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	changes := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- fnotify.New(cmd).Watch(ctx, files, changes)
		close(changes)
	}()
	for file := range changes {
		rewrite(file)
	}
	return <-done
}

func normalizeFile(norm stringnorm.Normalizer, src, dst string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return err
	}
	res := stringnorm.NormalizeNoErr(norm, string(data))
	return ioutil.WriteFile(dst, []byte(res), 0644)
}
