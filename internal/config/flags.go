package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the daemon's command-line flags from args (usually
// os.Args[1:]) into a partially filled [StructuredConfig].
//
// Flags:
//
//	-m member id
//	-member-config opaque member configuration file
//	-driver storage driver (sqlite, postgres, file)
//	-d database DSN
//	-f file storage directory
//	-types accepted object types, comma separated
//	-slow-sync object types to slow-sync, comma separated
//	-connect-timeout / -enumerate-timeout / -apply-timeout phase budgets
//	-workers commit worker count
//	-a device bridge address in format [host]:[port]
//	-request-timeout device bridge request timeout
//	-hash-key device bridge integrity key
//	-mirror mirror bridge address in format [host]:[port]
//	-s control API address in format [host]:[port]
//	-server-timeout control API request timeout
//	-i sync interval
//	-log-file log file path
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("syncd", flag.ContinueOnError)

	var adapterAddress, mirrorAddress, serverAddress NetAddress
	var memberID, memberConfig string
	var driver, databaseDSN, filesDir string
	var objectTypes, slowSync string
	var connectTimeout, enumerateTimeout, applyTimeout time.Duration
	var commitWorkers int
	var requestTimeout time.Duration
	var hashKey string
	var serverTimeout time.Duration
	var syncInterval time.Duration
	var logFile string
	var jsonConfigPath string

	fs.StringVar(&memberID, "m", "", "Member id")
	fs.StringVar(&memberConfig, "member-config", "", "Member configuration file")
	fs.StringVar(&driver, "driver", "", "Storage driver: sqlite, postgres or file")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&filesDir, "f", "", "File storage directory")
	fs.StringVar(&objectTypes, "types", "", "Accepted object types (comma separated)")
	fs.StringVar(&slowSync, "slow-sync", "", "Object types to slow-sync (comma separated)")
	fs.DurationVar(&connectTimeout, "connect-timeout", 0, "Connect timeout (e.g., 5s)")
	fs.DurationVar(&enumerateTimeout, "enumerate-timeout", 0, "Change enumeration timeout (e.g., 1m)")
	fs.DurationVar(&applyTimeout, "apply-timeout", 0, "Single change apply timeout (e.g., 30s)")
	fs.IntVar(&commitWorkers, "workers", 0, "Concurrent commit workers")
	fs.Var(&adapterAddress, "a", "Device bridge address host:port")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Device bridge request timeout (e.g., 30s)")
	fs.StringVar(&hashKey, "hash-key", "", "Device bridge integrity hash key")
	fs.Var(&mirrorAddress, "mirror", "Mirror bridge address host:port")
	fs.Var(&serverAddress, "s", "Control API address host:port")
	fs.DurationVar(&serverTimeout, "server-timeout", 0, "Control API request timeout (e.g., 2m)")
	fs.DurationVar(&syncInterval, "i", 0, "Sync interval (e.g., 5m)")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		Member: Member{
			ID:         memberID,
			ConfigPath: memberConfig,
		},
		Storage: Storage{
			Driver: driver,
			DB:     DB{DSN: databaseDSN},
			Files:  Files{Dir: filesDir},
		},
		Session: Session{
			ObjectTypes:      splitList(objectTypes),
			SlowSync:         splitList(slowSync),
			ConnectTimeout:   connectTimeout,
			EnumerateTimeout: enumerateTimeout,
			ApplyTimeout:     applyTimeout,
			CommitWorkers:    commitWorkers,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress.String(),
			RequestTimeout: requestTimeout,
			HashKey:        hashKey,
			MirrorAddress:  mirrorAddress.String(),
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: serverTimeout,
		},
		Workers:      Workers{SyncInterval: syncInterval},
		Log:          Log{File: logFile},
		JSONFilePath: jsonConfigPath,
	}, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
