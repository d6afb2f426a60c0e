// Package discovery announces this creature controller on the local
// network via mDNS/DNS-SD, so a show-control server doesn't need a
// statically configured address to find it.
package discovery

import (
	"context"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

// ServiceType is the DNS-SD service type this controller advertises.
const ServiceType = "_creature-controller._tcp"

// Announce registers name on port via mDNS and starts responding to
// queries in the background. Failures are logged, not fatal — discovery
// is a convenience, not a requirement for operating the creature.
func Announce(logger *log.Logger, name string, port int) {
	var cfg = dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}

	var svc, svcErr = dnssd.NewService(cfg)
	if svcErr != nil {
		logger.Error("DNS-SD: failed to create service", "error", svcErr)

		return
	}

	var responder, respErr = dnssd.NewResponder()
	if respErr != nil {
		logger.Error("DNS-SD: failed to create responder", "error", respErr)

		return
	}

	var _, addErr = responder.Add(svc)
	if addErr != nil {
		logger.Error("DNS-SD: failed to add service", "error", addErr)

		return
	}

	logger.Info("DNS-SD: announcing creature controller", "name", name, "port", port)

	go func() {
		if err := responder.Respond(context.Background()); err != nil {
			logger.Error("DNS-SD: responder stopped", "error", err)
		}
	}()
}
