package discovery

// Service announces the validator's HTTP endpoint to a service registry.
type Service interface {
	Register(advProtocol string, advHost string, advPort string) error
	Deregister() error
}
