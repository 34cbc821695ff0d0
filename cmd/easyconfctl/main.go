// easyconfctl is the control CLI for easyconfd configuration data:
// change-log history, profile catalogs and configuration snapshots.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"easyconfd/internal/changelog"
	"easyconfd/internal/config"
	"easyconfd/internal/exporter"
	"easyconfd/internal/linkparam"
	"easyconfd/internal/logging"
	"easyconfd/internal/paramset"
	"easyconfd/internal/profile"
	"easyconfd/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	setupLogging(cfg)

	switch cmd := flag.Arg(0); cmd {
	case "history":
		cmdHistory(cfg, flag.Args()[1:])
	case "record":
		cmdRecord(cfg, flag.Args()[1:])
	case "clear":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: easyconfctl clear <entry-id>")
			os.Exit(1)
		}
		cmdClear(cfg, flag.Arg(1))
	case "profiles":
		if flag.NArg() < 3 {
			fmt.Fprintln(os.Stderr, "Usage: easyconfctl profiles <receiver-type> <sender-type>")
			os.Exit(1)
		}
		cmdProfiles(cfg, flag.Arg(1), flag.Arg(2))
	case "match":
		if flag.NArg() < 4 {
			fmt.Fprintln(os.Stderr, "Usage: easyconfctl match <receiver-type> <sender-type> <values.json>")
			os.Exit(1)
		}
		cmdMatch(cfg, flag.Arg(1), flag.Arg(2), flag.Arg(3))
	case "presets":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: easyconfctl presets <timeOnOff|delay|rampOnOff>")
			os.Exit(1)
		}
		cmdPresets(cfg, flag.Arg(1))
	case "export":
		cmdExport(flag.Args()[1:])
	case "import":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: easyconfctl import <snapshot.json>")
			os.Exit(1)
		}
		cmdImport(flag.Arg(1))
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `easyconfctl - Control utility for easyconfd configuration data

Usage: easyconfctl [options] <command> [args]

Commands:
  history                         Print the configuration change log
  record                          Record a change entry from a changes file
  clear <entry-id>                Remove all change entries for an entry id
  profiles <receiver> <sender>    List resolved profiles for a channel type pair
  match <receiver> <sender> <values.json>
                                  Resolve which profile the values match
  presets <selector>              List time presets for a selector type
  export                          Export a configuration snapshot
  import <snapshot.json>          Validate and print an exported snapshot
  help                            Show this help message

Options:
  -config <path>  Path to config file (default: <data-dir>/config.toml)`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	logger, err := logging.New(&logging.Config{
		Level:      level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxAge:     cfg.Logging.MaxAgeDays,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
		Component:  "easyconfctl",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
}

// openLog loads the persisted change log into memory.
func openLog(cfg *config.Config) (*store.Store, *changelog.Log) {
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening change-log store: %v\n", err)
		os.Exit(1)
	}
	entries, err := st.LoadEntries()
	if err != nil {
		st.Close()
		fmt.Fprintf(os.Stderr, "Error loading change log: %v\n", err)
		os.Exit(1)
	}
	log := changelog.New(cfg.ChangeLog.MaxEntries)
	log.LoadEntries(entries)
	return st, log
}

func cmdHistory(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	entryID := fs.String("entry", "", "filter by entry id")
	channel := fs.String("channel", "", "filter by channel address")
	limit := fs.Int("limit", 50, "maximum entries to show")
	fs.Parse(args)

	st, log := openLog(cfg)
	defer st.Close()

	entries, total := log.GetEntries(changelog.Filter{
		EntryID:        *entryID,
		ChannelAddress: *channel,
		Limit:          *limit,
	})

	fmt.Printf("Change log: %d matching entries (showing %d)\n\n", total, len(entries))
	for _, e := range entries {
		fmt.Printf("%s  %s  %s (%s)  paramset=%s  source=%s\n",
			e.Timestamp, e.ChannelAddress, e.DeviceName, e.DeviceModel, e.ParamsetKey, e.Source)
		for param, change := range e.Changes {
			fmt.Printf("    %s: %v -> %v\n", param, change.Old, change.New)
		}
	}
}

func cmdRecord(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	entryID := fs.String("entry", "", "entry id (generated when empty)")
	interfaceID := fs.String("interface", "", "interface id")
	channel := fs.String("channel", "", "channel address")
	deviceName := fs.String("device-name", "", "device name")
	deviceModel := fs.String("device-model", "", "device model")
	paramsetKey := fs.String("paramset", "MASTER", "paramset key")
	source := fs.String("source", "easyconfctl", "change source")
	changesPath := fs.String("changes", "", "path to a {param: {old, new}} JSON file")
	fs.Parse(args)

	if *changesPath == "" {
		fmt.Fprintln(os.Stderr, "record: -changes is required")
		os.Exit(1)
	}
	data, err := os.ReadFile(*changesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading changes file: %v\n", err)
		os.Exit(1)
	}
	changes := make(paramset.ChangeDiff)
	if err := json.Unmarshal(data, &changes); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing changes file: %v\n", err)
		os.Exit(1)
	}

	id := *entryID
	if id == "" {
		id = uuid.NewString()
	}

	st, log := openLog(cfg)
	defer st.Close()

	entry := log.Add(changelog.AddRequest{
		EntryID:        id,
		InterfaceID:    *interfaceID,
		ChannelAddress: *channel,
		DeviceName:     *deviceName,
		DeviceModel:    *deviceModel,
		ParamsetKey:    *paramsetKey,
		Changes:        changes,
		Source:         *source,
	})
	if err := st.SaveEntries(log.Entries()); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting change log: %v\n", err)
		os.Exit(1)
	}
	logging.Info("recorded change entry", "entry_id", entry.EntryID, "changes", len(entry.Changes))
	fmt.Printf("Recorded entry %s (%d changed parameters)\n", entry.EntryID, len(entry.Changes))
}

func cmdClear(cfg *config.Config, entryID string) {
	st, log := openLog(cfg)
	defer st.Close()

	removed := log.ClearByEntryID(entryID)
	if err := st.SaveEntries(log.Entries()); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting change log: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d entries\n", removed)
}

func loadCatalog(cfg *config.Config) *profile.Catalog {
	catalog, err := profile.LoadCatalogDir(cfg.Catalog.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profile catalog: %v\n", err)
		os.Exit(1)
	}
	return catalog
}

func cmdProfiles(cfg *config.Config, receiverType, senderType string) {
	catalog := loadCatalog(cfg)

	profiles, ok := catalog.GetProfiles(receiverType, senderType, cfg.Locale)
	if !ok {
		fmt.Printf("No profiles defined for %s/%s\n", receiverType, senderType)
		return
	}
	if len(profiles) == 0 {
		fmt.Printf("Empty profile list for %s/%s\n", receiverType, senderType)
		return
	}
	for _, p := range profiles {
		fmt.Printf("[%d] %s\n", p.ID, p.Name)
		if p.Description != "" {
			fmt.Printf("    %s\n", p.Description)
		}
		if len(p.EditableParams) > 0 {
			fmt.Printf("    editable: %v\n", p.EditableParams)
		}
		for param, value := range p.FixedParams {
			fmt.Printf("    fixed: %s = %v\n", param, value)
		}
	}
}

func cmdMatch(cfg *config.Config, receiverType, senderType, valuesPath string) {
	catalog := loadCatalog(cfg)

	data, err := os.ReadFile(valuesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading values file: %v\n", err)
		os.Exit(1)
	}
	values := make(paramset.ValueSet)
	if err := json.Unmarshal(data, &values); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing values file: %v\n", err)
		os.Exit(1)
	}

	id := catalog.MatchActiveProfile(receiverType, senderType, values)
	if id == profile.ExpertProfileID {
		fmt.Println("No predefined profile matches (expert)")
		return
	}
	fmt.Printf("Active profile: %d\n", id)
}

func cmdPresets(cfg *config.Config, selector string) {
	options := linkparam.Presets(linkparam.TimeSelectorType(selector), cfg.Locale)
	if len(options) == 0 {
		fmt.Fprintf(os.Stderr, "Unknown selector type: %s\n", selector)
		os.Exit(1)
	}
	for _, opt := range options {
		seconds := linkparam.DecodeTimeValue(opt.Base, opt.Factor)
		fmt.Printf("base=%d factor=%-3d %-12s (%.1fs)\n", opt.Base, opt.Factor, opt.Label, seconds)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	deviceAddress := fs.String("device", "", "device address")
	model := fs.String("model", "", "device model")
	channel := fs.String("channel", "", "channel address")
	channelType := fs.String("channel-type", "", "channel type")
	paramsetKey := fs.String("paramset", "MASTER", "paramset key")
	valuesPath := fs.String("values", "", "path to a {param: value} JSON file")
	output := fs.String("output", "", "output file (default stdout)")
	fs.Parse(args)

	if *valuesPath == "" {
		fmt.Fprintln(os.Stderr, "export: -values is required")
		os.Exit(1)
	}
	data, err := os.ReadFile(*valuesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading values file: %v\n", err)
		os.Exit(1)
	}
	values := make(paramset.ValueSet)
	if err := json.Unmarshal(data, &values); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing values file: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := exporter.Export(exporter.Request{
		DeviceAddress:  *deviceAddress,
		Model:          *model,
		ChannelAddress: *channel,
		ChannelType:    *channelType,
		ParamsetKey:    *paramsetKey,
		Values:         values,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting configuration: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Println(string(snapshot))
		return
	}
	if err := os.WriteFile(*output, snapshot, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported configuration to %s\n", *output)
}

func cmdImport(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		os.Exit(1)
	}
	cfg, err := exporter.Import(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Valid snapshot (version %s) exported at %s\n", cfg.Version, cfg.ExportedAt)
	fmt.Printf("Device %s (%s), channel %s type %s, paramset %s, %d values\n",
		cfg.DeviceAddress, cfg.Model, cfg.ChannelAddress, cfg.ChannelType, cfg.ParamsetKey, len(cfg.Values))
}
