package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/internal/usecase"
	"testforge/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	usecase  *usecase.Service
	ctx      context.Context
	cancel   context.CancelFunc
	sigChan  chan os.Signal
	stopping bool
	picking  bool
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Usecase *usecase.Service
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	return &Interface{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase:  params.Usecase,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  sigChan,
		stopping: false,
	}
}

func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-i.sigChan
		fmt.Println("\n\n⚠️  Interrupt received, shutting down...")
		i.stopping = true
		i.Stop()
	}()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		if i.stopping {
			break
		}

		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if err.Error() == "exit" {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func (i *Interface) Stop() error {
	if i.stopping {
		return nil
	}

	i.stopping = true
	i.logger.Info("Stopping console interface...")

	i.cancel()

	fmt.Println("👋 Goodbye!")
	os.Exit(0)

	return nil
}

func (i *Interface) handleCommand(input string) error {
	parts := strings.SplitN(input, " ", 2)
	command := parts[0]
	arg := ""

	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch command {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Println("Shutting down...")

		return fmt.Errorf("exit")
	case "open":
		return i.openURL(arg)
	case "new":
		return i.newScenario(arg)
	case "pick":
		return i.startPicking()
	case "stop":
		return i.stopPicking()
	case "steps":
		return i.listSteps()
	case "add":
		return i.addStep(arg)
	case "move":
		return i.moveStep(arg)
	case "del":
		return i.deleteStep(arg)
	case "generate", "gen":
		return i.generate()
	case "set":
		return i.setCredential(arg)
	case "url":
		return i.showURL()
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", command)

		return nil
	}
}

func (i *Interface) openURL(url string) error {
	if url == "" {
		return fmt.Errorf("usage: open <url>")
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	if err := i.usecase.Browser.Navigate(i.ctx, url); err != nil {
		return err
	}

	fmt.Printf("🌐 Opened %s\n", url)

	return nil
}

func (i *Interface) newScenario(name string) error {
	if name == "" {
		name = "recorded scenario"
	}

	sc := i.usecase.Scenarios.StartScenario(name, "")
	fmt.Printf("📝 Scenario started: %s\n", sc.Name)

	return nil
}

func (i *Interface) startPicking() error {
	if err := i.usecase.Picker.Start(i.ctx); err != nil {
		return err
	}

	i.picking = true
	fmt.Println("🎯 Picking enabled. Click elements in the browser; each click is recorded as a step.")

	return nil
}

func (i *Interface) stopPicking() error {
	if err := i.usecase.Picker.Stop(i.ctx); err != nil {
		return err
	}

	i.picking = false
	fmt.Println("🛑 Picking stopped.")

	return nil
}

func (i *Interface) listSteps() error {
	steps := i.usecase.Scenarios.Steps()

	if len(steps) == 0 {
		fmt.Println("No steps recorded yet.")

		return nil
	}

	for _, step := range steps {
		fmt.Printf("  %d. %s", step.OrderIndex+1, step.Action)

		if step.Selector != "" {
			fmt.Printf("  %s", step.Selector)
		}

		if step.Value != "" {
			fmt.Printf("  %q", step.Value)
		}

		if step.Locator != nil && len(step.Locator.Alternatives) > 0 {
			fmt.Printf("  (+%d alternatives)", len(step.Locator.Alternatives))
		}

		fmt.Println()
	}

	return nil
}

// addStep records a manual step: "add <action> [selector] [value]".
// The value may contain spaces.
func (i *Interface) addStep(arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: add <action> [selector] [value]")
	}

	fields := strings.SplitN(arg, " ", 3)
	action := entity.ActionKind(fields[0])

	step := entity.TestStep{Action: action}

	switch action {
	case entity.ActionNavigate, entity.ActionWait, entity.ActionScreenshot:
		if len(fields) > 1 {
			step.Value = strings.TrimSpace(strings.Join(fields[1:], " "))
		}
	default:
		if len(fields) > 1 {
			step.Selector = fields[1]
		}

		if len(fields) > 2 {
			step.Value = fields[2]
		}
	}

	recorded, err := i.usecase.Scenarios.AppendStep(step)
	if err != nil {
		return err
	}

	fmt.Printf("➕ Step %d recorded: %s\n", recorded.OrderIndex+1, recorded.Action)

	return nil
}

func (i *Interface) moveStep(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return fmt.Errorf("usage: move <from> <to> (1-based)")
	}

	from, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("usage: move <from> <to> (1-based)")
	}

	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("usage: move <from> <to> (1-based)")
	}

	if err := i.usecase.Scenarios.MoveStep(from-1, to-1); err != nil {
		return err
	}

	return i.listSteps()
}

func (i *Interface) deleteStep(arg string) error {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("usage: del <index> (1-based)")
	}

	if err := i.usecase.Scenarios.DeleteStep(index - 1); err != nil {
		return err
	}

	fmt.Printf("🗑  Step %d deleted.\n", index)

	return nil
}

func (i *Interface) generate() error {
	fmt.Printf("\n⚙️  Generating %s code...\n", i.config.GenerationConfig.Framework)

	outcome, paths, err := i.usecase.Studio.GenerateCode(i.ctx)
	if err != nil {
		return err
	}

	if !outcome.Success {
		fmt.Printf("❌ Generation failed: %s\n", outcome.ErrorMessage)

		return nil
	}

	fmt.Printf("✅ Generation succeeded (%s)\n", outcome.Framework)

	for _, path := range paths {
		fmt.Printf("   📄 %s\n", path)
	}

	return nil
}

func (i *Interface) setCredential(arg string) error {
	fields := strings.SplitN(arg, " ", 2)
	if len(fields) != 2 || fields[0] == "" {
		return fmt.Errorf("usage: set <key> <value>")
	}

	if err := i.usecase.Credentials.Set(fields[0], strings.TrimSpace(fields[1])); err != nil {
		return err
	}

	fmt.Printf("🔑 Stored %s (takes effect on next start)\n", fields[0])

	return nil
}

func (i *Interface) showURL() error {
	url, err := i.usecase.Browser.CurrentURL(i.ctx)
	if err != nil {
		return err
	}

	fmt.Println(url)

	return nil
}

func (i *Interface) printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║            🧪  TestForge  🌐                              ║
║                                                           ║
║  Pick elements on a live page, record scenarios and       ║
║  generate runnable automation test code.                  ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  open <url>                  - Navigate the embedded browser
  new [name]                  - Start a fresh scenario
  pick                        - Start element picking (clicks become steps)
  stop                        - Stop element picking
  steps                       - List recorded steps
  add <action> [sel] [value]  - Add a manual step (navigate, click, type_text,
                                select, hover, wait, assert_visible, ...)
  move <from> <to>            - Reorder steps (1-based)
  del <index>                 - Delete a step (1-based)
  generate, gen               - Generate page object + test code
  set <key> <value>           - Store a credential (e.g. AI_API_KEY)
  url                         - Show the current page URL
  help, h                     - Show this help message
  exit, quit, q               - Exit the application
`
	fmt.Println(help)
}
