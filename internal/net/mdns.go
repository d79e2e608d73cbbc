package net

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_sketchboard._tcp"

// ErrNoServer is returned when discovery finds nothing.
var ErrNoServer = errors.New("no drawing server found on the local network")

// Advertise announces a drawing server on port. Shut the returned server
// down to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"SketchBoard drawing store", "path=" + Path}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d as %s", serviceType, port, host)
	return server, nil
}

// Discover browses for drawing servers for up to timeout and returns the
// first one as "ip:port".
func Discover(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	var (
		mu    sync.Mutex
		found string
		done  = make(chan struct{})
	)
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			mu.Lock()
			if found == "" {
				found = fmt.Sprintf("%s:%d", e.AddrV4, e.Port)
				log.Printf("[MDNS] Found drawing server %s (%s)", found, e.Name)
			}
			mu.Unlock()
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done

	if err != nil {
		return "", fmt.Errorf("mDNS query: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if found == "" {
		return "", ErrNoServer
	}
	return found, nil
}
