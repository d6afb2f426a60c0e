package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/opsnlops/creature-controller-go/internal/audio"
	"github.com/opsnlops/creature-controller-go/internal/creatureconfig"
	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
	"github.com/opsnlops/creature-controller-go/internal/discovery"
	"github.com/opsnlops/creature-controller-go/internal/module"
	"github.com/opsnlops/creature-controller-go/internal/outbound"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
	"github.com/opsnlops/creature-controller-go/internal/router"
	"github.com/opsnlops/creature-controller-go/internal/serial"
	"github.com/opsnlops/creature-controller-go/internal/telemetry"
	"github.com/opsnlops/creature-controller-go/internal/watchdog"
)

const shutdownGrace = 2 * time.Second

func main() {
	var configPath = pflag.StringP("config", "c", "/etc/creature/creature.yaml", "Path to creature configuration file.")
	var useAudio = pflag.BoolP("audio", "u", true, "Enable the multicast RTP/Opus audio pipeline.")
	var announcePort = pflag.IntP("port", "p", 8000, "Port advertised via DNS-SD for this controller.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - host-side animatronic creature controller\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	var logger = log.New(os.Stderr)
	logger.SetLevel(log.InfoLevel)

	var cfg, cfgErr = creatureconfig.Load(*configPath)
	if cfgErr != nil {
		logger.Fatal("failed to load configuration", "path", *configPath, "error", cfgErr)
	}

	var bus = &telemetry.Scalars{}
	var sink = outbound.NewSink(logger, cfg.CreatureID)
	sink.SetEnabled(true)

	var moduleRouter = router.New(logger)
	moduleRouter.Start()

	var links []*serial.Link
	var processors []*module.Processor

	for _, m := range cfg.Modules {
		if !m.Enabled {
			continue
		}

		var id = protocol.ParseModuleId(m.ID)
		if id == protocol.ModuleInvalid {
			logger.Fatal("unknown module id in configuration", "id", m.ID)
		}

		var configuration = protocol.ServoModuleConfiguration{Raw: m.Configuration}
		var handler = module.NewHandler(logger, id, configuration)

		if err := moduleRouter.Register(handler); err != nil {
			logger.Fatal("failed to register module", "id", m.ID, "error", err)
		}

		var link = serial.Open(logger, m.DeviceNode, handler.Incoming(), handler.Outgoing())
		link.Start()
		links = append(links, link)

		var processor = module.NewProcessor(logger, handler, bus, sink)
		processor.Start()
		processors = append(processors, processor)

		handler.Register()
	}

	var thresholds = watchdog.Thresholds{
		PowerWarnWatts:      cfg.Watchdog.PowerWarnWatts,
		PowerLimitWatts:     cfg.Watchdog.PowerLimitWatts,
		PowerDwell:          cfg.Watchdog.PowerDwell(),
		BoardTempWarnF:      cfg.Watchdog.BoardTempWarnF,
		BoardTempLimitF:     cfg.Watchdog.BoardTempLimitF,
		BoardTempDwell:      cfg.Watchdog.BoardTempDwell(),
		DxlTempWarnF:        cfg.Watchdog.DxlTempWarnF,
		DxlTempLimitF:       cfg.Watchdog.DxlTempLimitF,
		DxlTempDwell:        cfg.Watchdog.DxlTempDwell(),
		DxlLoadWarnPercent:  cfg.Watchdog.DxlLoadWarnPercent,
		DxlLoadLimitPercent: cfg.Watchdog.DxlLoadLimitPercent,
		DxlLoadDwell:        cfg.Watchdog.DxlLoadDwell(),
	}
	var dog = watchdog.New(logger, bus, moduleRouter, sink, thresholds)
	dog.Start()

	var audioSubsystem *creatureAudio
	if *useAudio {
		var err error
		audioSubsystem, err = startAudio(logger, cfg.Audio)
		if err != nil {
			logger.Error("audio subsystem did not start", "error", err)
		}
	}

	discovery.Announce(logger, cfg.CreatureID, *announcePort)

	logger.Info("creature controller running", "creature", cfg.CreatureID, "modules", moduleRouter.Ids())

	var sig = make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")

	dog.Shutdown(shutdownGrace)

	for _, p := range processors {
		p.Shutdown(shutdownGrace)
	}
	for _, l := range links {
		l.Shutdown(shutdownGrace)
	}

	if audioSubsystem != nil {
		audioSubsystem.Shutdown(shutdownGrace)
	}

	moduleRouter.Shutdown(shutdownGrace)
	sink.Shutdown()
}

type creatureAudio struct {
	dialog  *audio.Stream
	bgm     *audio.Stream
	mixer   *audio.Mixer
	monitor *audio.Monitor
	out     *audio.PortAudioSink
}

func startAudio(logger *log.Logger, cfg creatureconfig.AudioConfig) (*creatureAudio, error) {
	var dialogGroup = fmt.Sprintf("%s%d", audio.DialogGroupBase, cfg.DialogChannel)

	var dialog, dialogErr = audio.OpenStream(logger, "dialog", dialogGroup, cfg.InterfaceIP, audio.SilentDecoder{}, true)
	if dialogErr != nil {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "opening dialog stream: "+dialogErr.Error())
	}

	var bgm, bgmErr = audio.OpenStream(logger, "bgm", audio.BGMGroup, cfg.InterfaceIP, audio.SilentDecoder{}, false)
	if bgmErr != nil {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "opening bgm stream: "+bgmErr.Error())
	}

	var out, outErr = audio.NewPortAudioSink()
	if outErr != nil {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "opening audio output: "+outErr.Error())
	}

	var mixer = audio.NewMixer(logger, dialog, bgm, out)
	var monitor = audio.NewMonitor(logger, map[string]audio.LevelSource{
		"dialog": dialog.Ring(),
		"bgm":    bgm.Ring(),
	})

	dialog.Start()
	bgm.Start()
	mixer.Start()
	monitor.Start()

	return &creatureAudio{dialog: dialog, bgm: bgm, mixer: mixer, monitor: monitor, out: out}, nil
}

func (a *creatureAudio) Shutdown(timeout time.Duration) {
	a.monitor.Shutdown(timeout)
	a.mixer.Shutdown(timeout)
	a.dialog.Shutdown(timeout)
	a.bgm.Shutdown(timeout)
	_ = a.out.Close()
}
