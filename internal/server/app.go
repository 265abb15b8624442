// Package server initializes the application: configuration, logging, the
// database repositories, and the release service, and dispatches the
// operator commands.
package server

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/flagx"
	"github.com/seqshare/seqshare/internal/logging"
	"github.com/seqshare/seqshare/internal/server/config"
	"github.com/seqshare/seqshare/internal/server/manifests"
	"github.com/seqshare/seqshare/internal/server/repositories/repomanager"
	"github.com/seqshare/seqshare/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	releaseService *services.ReleaseService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	rm, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rs := services.NewReleaseService(rm, c, logger)

	return &App{config: c, logger: logger, releaseService: rs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

const usage = `usage: seqshare <command> <release-key> [options]

commands:
  activate               build, validate and snapshot the release manifest
  manifest               print the stored master manifest
  tsv                    export the flat manifest as tab-separated text
  htsget                 print the htsget routing manifest
  objects                print the bucket/key object list
  install-access-point   generate and save access point templates
  resolve-access-point   map shared objects to installed access point aliases
`

// configFlags are owned by config loading (flags.go / JsonConfigFlags) and
// must not be mistaken for the command or release key, wherever the caller
// puts them.
var configFlags = []string{"-c", "-config", "-d", "-g", "-u", "-p", "-e", "-b", "-h", "-x"}

// Run dispatches one operator command. args is os.Args[1:]; the
// configuration flags already consumed by config loading are stripped
// before the command and release key are read.
func (app *App) Run(args []string) error {

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	args = flagx.ExcludeArgs(args, configFlags)

	if len(args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("%w: command and release key required", common.ErrGenerationUsage)
	}
	command, releaseKey, rest := args[0], args[1], args[2:]

	switch command {
	case "activate":
		return app.runActivate(ctx, releaseKey, rest)
	case "manifest":
		return app.runManifest(ctx, releaseKey)
	case "tsv":
		return app.runTSV(ctx, releaseKey, rest)
	case "htsget":
		return app.runHtsget(ctx, releaseKey)
	case "objects":
		return app.runObjects(ctx, releaseKey, rest)
	case "install-access-point":
		return app.runInstallAccessPoint(ctx, releaseKey, rest)
	case "resolve-access-point":
		return app.runResolveAccessPoint(ctx, releaseKey, rest)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", common.ErrGenerationUsage, command)
	}
}

func (app *App) runActivate(ctx context.Context, releaseKey string, args []string) error {
	fs := newFlagSet("activate")
	skipValidation := fs.Bool("skip-validation", false, "store the manifest even when validation fails")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-skip-validation"})); err != nil {
		return err
	}

	result, err := app.releaseService.Activate(ctx, releaseKey, *skipValidation)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (app *App) runManifest(ctx context.Context, releaseKey string) error {
	m, etag, err := app.releaseService.MasterManifest(ctx, releaseKey)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "manifest snapshot loaded", "releaseKey", releaseKey, "etag", etag)
	return printJSON(m)
}

func (app *App) runTSV(ctx context.Context, releaseKey string, args []string) error {
	fs := newFlagSet("tsv")
	columns := fs.String("columns", strings.Join(defaultTSVColumns, ","), "comma-separated column list")
	presign := fs.Bool("presign", false, "add presigned access URLs")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-columns", "-presign"})); err != nil {
		return err
	}

	_, err := app.releaseService.CreateTSV(ctx, os.Stdout, releaseKey,
		strings.Split(*columns, ","), *presign)
	return err
}

func (app *App) runHtsget(ctx context.Context, releaseKey string) error {
	m, err := app.releaseService.CreateHtsgetManifest(ctx, releaseKey)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (app *App) runObjects(ctx context.Context, releaseKey string, args []string) error {
	fs := newFlagSet("objects")
	protocols := fs.String("protocols", manifests.ProtocolAll, "comma-separated protocol filter")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-protocols"})); err != nil {
		return err
	}

	entries, err := app.releaseService.CreateObjectList(ctx, releaseKey, strings.Split(*protocols, ","))
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func (app *App) runInstallAccessPoint(ctx context.Context, releaseKey string, args []string) error {
	fs := newFlagSet("install-access-point")
	account := fs.String("account", "", "consuming account id")
	vpc := fs.String("vpc", "", "restrict access to this VPC")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-account", "-vpc"})); err != nil {
		return err
	}
	if *account == "" {
		return fmt.Errorf("%w: -account is required", common.ErrGenerationUsage)
	}

	gen, err := app.releaseService.InstallAccessPoint(ctx, releaseKey, *account, *vpc)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"stackId":      gen.StackID,
		"rootDocument": gen.RootDocumentKey,
		"groups":       len(gen.Groups()),
	})
}

func (app *App) runResolveAccessPoint(ctx context.Context, releaseKey string, args []string) error {
	fs := newFlagSet("resolve-access-point")
	stack := fs.String("stack", "", "installed root stack name")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-stack"})); err != nil {
		return err
	}
	if *stack == "" {
		return fmt.Errorf("%w: -stack is required", common.ErrGenerationUsage)
	}

	resolved, err := app.releaseService.ResolveAccessPoint(ctx, releaseKey, *stack)
	if err != nil {
		return err
	}
	return printJSON(resolved)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

var defaultTSVColumns = []string{
	manifests.ColCaseID,
	manifests.ColPatientID,
	manifests.ColSpecimenID,
	manifests.ColArtifactID,
	manifests.ColObjectType,
	manifests.ColObjectStoreURL,
	manifests.ColObjectSize,
	manifests.ColMD5,
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
