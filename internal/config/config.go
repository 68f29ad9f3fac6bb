// Package config loads the YAML configuration surface described for
// this core (limits, endpoints, hosts, routes) and materializes it into
// live engine objects, using gopkg.in/yaml.v3 for decoding.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sunfirefox/http/engine"
)

// Document is the root of a configuration file.
type Document struct {
	Limits    LimitsDoc    `yaml:"limits"`
	Endpoints []EndpointDoc `yaml:"endpoints"`
}

type LimitsDoc struct {
	HeaderSize      int           `yaml:"headerSize"`
	HeaderCount     int           `yaml:"headerCount"`
	URISize         int           `yaml:"uriSize"`
	ReceiveBodySize int64         `yaml:"receiveBodySize"`
	ChunkSize       int           `yaml:"chunkSize"`
	TimerPeriod     time.Duration `yaml:"timerPeriod"`
	AcceptRate      float64       `yaml:"acceptRate"`
	AcceptBurst     int           `yaml:"acceptBurst"`
}

type EndpointDoc struct {
	IP                string    `yaml:"ip"`
	Port              int       `yaml:"port"`
	NamedVirtualHosts bool      `yaml:"namedVirtualHosts"`
	Hosts             []HostDoc `yaml:"hosts"`
}

type HostDoc struct {
	Name     string     `yaml:"name"`
	Protocol string     `yaml:"protocol"`
	Routes   []RouteDoc `yaml:"routes"`
}

type RouteDoc struct {
	Pattern string   `yaml:"pattern"`
	Methods []string `yaml:"methods"`
	Target  string   `yaml:"target"`
}

// Load reads and parses a YAML configuration document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &doc, nil
}

func (d *LimitsDoc) toEngineLimits() *engine.Limits {
	l := engine.NewLimits()
	if d.HeaderSize > 0 {
		l.HeaderSize = d.HeaderSize
	}
	if d.HeaderCount > 0 {
		l.HeaderCount = d.HeaderCount
	}
	if d.URISize > 0 {
		l.URISize = d.URISize
	}
	if d.ReceiveBodySize > 0 {
		l.ReceiveBodySize = d.ReceiveBodySize
	}
	if d.ChunkSize > 0 {
		l.ChunkSize = d.ChunkSize
	}
	if d.TimerPeriod > 0 {
		l.TimerPeriod = d.TimerPeriod
	}
	if d.AcceptRate > 0 {
		l.AcceptRate = d.AcceptRate
	}
	if d.AcceptBurst > 0 {
		l.AcceptBurst = d.AcceptBurst
	}
	return l
}

var methodNames = map[string]uint32{
	"GET":     engine.MethodGET,
	"HEAD":    engine.MethodHEAD,
	"POST":    engine.MethodPOST,
	"PUT":     engine.MethodPUT,
	"DELETE":  engine.MethodDELETE,
	"OPTIONS": engine.MethodOPTIONS,
	"TRACE":   engine.MethodTRACE,
}

// TargetResolver maps a route's Target string (an opaque handler name in
// the YAML document) to a live engine.Pipeline. Build calls it once per
// route; callers supply the binding between configuration and code.
type TargetResolver func(target string) engine.Pipeline

// Build materializes the document's endpoints, hosts and routes into svc,
// resolving each route's Target through resolve.
func (d *Document) Build(svc *engine.Service, resolve TargetResolver) error {
	limits := d.Limits.toEngineLimits()

	for _, epDoc := range d.Endpoints {
		ep := engine.NewEndpoint(epDoc.IP, epDoc.Port, limits)
		ep.NamedVirtualHosts = epDoc.NamedVirtualHosts

		for _, hostDoc := range epDoc.Hosts {
			host := engine.NewHost(hostDoc.Name)
			if hostDoc.Protocol != "" {
				host.Protocol = hostDoc.Protocol
			}
			for _, routeDoc := range hostDoc.Routes {
				var methods uint32
				for _, m := range routeDoc.Methods {
					flag, ok := methodNames[m]
					if !ok {
						return fmt.Errorf("config: unknown method %q in route %q", m, routeDoc.Pattern)
					}
					methods |= flag
				}
				var handler engine.Pipeline
				if resolve != nil && routeDoc.Target != "" {
					handler = resolve(routeDoc.Target)
				}
				host.AddRoute(&engine.Route{
					Name:    routeDoc.Target,
					Pattern: routeDoc.Pattern,
					Methods: methods,
					Handler: handler,
				})
			}
			ep.AddHost(host)
		}
		svc.AddEndpoint(ep)
	}
	return nil
}
