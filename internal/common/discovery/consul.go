package discovery

import (
	"fmt"
	"math/rand"

	"github.com/hashicorp/consul/api"
)

// ServiceRegistry registers an HTTP service instance with Consul. The
// health check probes the service's /health endpoint.
type ServiceRegistry struct {
	client    *api.Client
	serviceID string
	service   string
	address   string
	port      int
	tags      []string
	check     *api.AgentServiceCheck
}

// NewServiceRegistry builds a registry entry for one instance.
func NewServiceRegistry(client *api.Client, serviceID, service, address string, port int, tags []string) *ServiceRegistry {
	return &ServiceRegistry{
		client:    client,
		serviceID: serviceID,
		service:   service,
		address:   address,
		port:      port,
		tags:      tags,
		check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", address, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

func (r *ServiceRegistry) Register() error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.service,
		Tags:    r.tags,
		Address: r.address,
		Port:    r.port,
		Check:   r.check,
	}
	return r.client.Agent().ServiceRegister(registration)
}

func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}

// ResolveService returns the base URL of one healthy instance of a service,
// picked at random. Used by the gateway to route requests.
func ResolveService(client *api.Client, service string) (string, error) {
	entries, _, err := client.Health().Service(service, "", true, nil)
	if err != nil {
		return "", fmt.Errorf("failed to query consul for %s: %w", service, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no healthy instances of %s", service)
	}

	e := entries[rand.Intn(len(entries))]
	addr := e.Service.Address
	if addr == "" {
		addr = e.Node.Address
	}
	return fmt.Sprintf("http://%s:%d", addr, e.Service.Port), nil
}

// NewConsulClient builds a Consul API client.
func NewConsulClient(host string, port int) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)
	return api.NewClient(config)
}
