package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"hbridge/core"
	"hbridge/host/config"
	"hbridge/host/motorctl"
	"hbridge/host/serial"
)

var (
	configFile = flag.String("config", "", "YAML config file (default $HBRIDGE_CONFIG or motorctl.yaml)")
	device     = flag.String("device", "", "Serial device path, overrides the config file")
	simulate   = flag.Bool("sim", false, "Drive a simulated firmware instead of a serial port")
)

func main() {
	flag.Parse()

	path, err := config.Path(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path, *configFile == "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *device != "" {
		cfg.Device = *device
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var link io.Writer
	var sim *motorctl.Simulator
	if *simulate {
		sim, err = motorctl.NewSimulator(core.DefaultDriveConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start simulator: %v\n", err)
			os.Exit(1)
		}
		go runWatchdog(ctx, sim)
		link = sim
	} else {
		port, err := serial.Open(&serial.Config{
			Device:      cfg.Device,
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeoutMs,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()
		link = port
	}

	client := motorctl.NewClient(link)
	if err := client.SetTimeout(cfg.MaxDuration()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set motor timeout: %v\n", err)
		os.Exit(1)
	}
	if cfg.KeepaliveMs > 0 {
		go client.Keepalive(ctx, cfg.Keepalive())
	}

	shell := newShell(client, sim)
	if sim != nil {
		shell.Println("hbridge motor shell (simulated firmware)")
	} else {
		shell.Println("hbridge motor shell on " + cfg.Device)
	}
	shell.Run()

	// Never leave the wheels turning when the shell exits
	if err := client.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to stop motors: %v\n", err)
	}
}

// runWatchdog plays the firmware main loop for the simulator
func runWatchdog(ctx context.Context, sim *motorctl.Simulator) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sim.Tick()
		}
	}
}

func newShell(client *motorctl.Client, sim *motorctl.Simulator) *ishell.Shell {
	shell := ishell.New()

	printState := func(c *ishell.Context) {
		left, right := client.Power()
		c.Printf("left=%.3f right=%.3f\n", left, right)
		if sim != nil {
			ch := sim.Channels()
			c.Printf("registers: left fwd=%d bwd=%d, right fwd=%d bwd=%d\n", ch[0], ch[1], ch[2], ch[3])
		}
	}

	motorCmd := func(name string, set func(float32) error) *ishell.Cmd {
		return &ishell.Cmd{
			Name: name,
			Help: name + " <power>, power in [-1, 1], negative runs backward",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Println("usage: " + name + " <power>")
					return
				}
				p, err := parsePower(c.Args[0])
				if err != nil {
					c.Println("Error:", err)
					return
				}
				if err := set(p); err != nil {
					c.Println("Error:", err)
					return
				}
				printState(c)
			},
		}
	}

	shell.AddCmd(motorCmd("left", client.SetLeft))
	shell.AddCmd(motorCmd("right", client.SetRight))

	shell.AddCmd(&ishell.Cmd{
		Name: "drive",
		Help: "drive <left> <right>, set both motors at once",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Println("usage: drive <left> <right>")
				return
			}
			left, err := parsePower(c.Args[0])
			if err != nil {
				c.Println("Error:", err)
				return
			}
			right, err := parsePower(c.Args[1])
			if err != nil {
				c.Println("Error:", err)
				return
			}
			if err := client.SetDrive(left, right); err != nil {
				c.Println("Error:", err)
				return
			}
			printState(c)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "stop both motors",
		Func: func(c *ishell.Context) {
			if err := client.Stop(); err != nil {
				c.Println("Error:", err)
				return
			}
			printState(c)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "timeout",
		Help: "timeout <ms>, stop the motors after ms without a command, 0 disables",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: timeout <ms>")
				return
			}
			ms, err := strconv.ParseUint(c.Args[0], 10, 32)
			if err != nil {
				c.Println("Error:", err)
				return
			}
			if err := client.SetTimeout(time.Duration(ms) * time.Millisecond); err != nil {
				c.Println("Error:", err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "show the last commanded power",
		Func: printState,
	})

	return shell
}

// parsePower parses a finite power command
func parsePower(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid power %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid power %q: not a finite number", s)
	}
	return float32(v), nil
}
