// Package hostfacts gathers the host identity facts sent with a
// registration: machine name, operating system, primary IP and DNS domain.
package hostfacts

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

type Facts struct {
	MachineName     string
	OperatingSystem string
	IPAddress       string
	Domain          string
}

type Collector interface {
	Collect(ctx context.Context) (*Facts, error)
}

type collector struct{}

func New() *collector {
	return &collector{}
}

func (c *collector) Collect(ctx context.Context) (*Facts, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}

	machineName, domain := splitFQDN(info.Hostname)

	return &Facts{
		MachineName:     machineName,
		OperatingSystem: describePlatform(info),
		IPAddress:       primaryIP(),
		Domain:          domain,
	}, nil
}

func describePlatform(info *host.InfoStat) string {
	if info.Platform == "" {
		return info.OS
	}
	if info.PlatformVersion == "" {
		return info.Platform
	}
	return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
}

// splitFQDN separates "dc01.corp.example" into machine name and DNS domain.
func splitFQDN(hostname string) (string, string) {
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	name, domain, found := strings.Cut(hostname, ".")
	if !found {
		return hostname, ""
	}
	return name, domain
}

// primaryIP returns the address the host routes external traffic from,
// falling back to the first non-loopback interface address.
func primaryIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstNonLoopbackIP()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

func firstNonLoopbackIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}
