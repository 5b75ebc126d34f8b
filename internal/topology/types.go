package topology

// Port is a network port exposed by a service or member.
type Port struct {
	Protocol string `json:"protocol"`
	Value    int    `json:"value"`
	Proxy    int    `json:"proxy"`
}

// MemberStatus is the lifecycle status of a cluster member.
type MemberStatus string

// Member statuses, in lifecycle order.
const (
	StatusCreated         MemberStatus = "Created"
	StatusStarting        MemberStatus = "Starting"
	StatusActivated       MemberStatus = "Activated"
	StatusSuspended       MemberStatus = "Suspended"
	StatusReadyToShutDown MemberStatus = "ReadyToShutDown"
	StatusTerminated      MemberStatus = "Terminated"
)

// Member is one instance in a cluster.
type Member struct {
	ServiceName string       `json:"service_name"`
	ClusterID   string       `json:"cluster_id"`
	MemberID    string       `json:"member_id"`
	MemberIP    string       `json:"member_ip,omitempty"`
	Status      MemberStatus `json:"status"`
	Ports       []Port       `json:"ports,omitempty"`
}

// Cluster is a group of members serving one service.
type Cluster struct {
	ServiceName     string    `json:"service_name"`
	ClusterID       string    `json:"cluster_id"`
	AutoscalePolicy string    `json:"autoscale_policy,omitempty"`
	HostNames       []string  `json:"host_names,omitempty"`
	TenantRange     string    `json:"tenant_range,omitempty"`
	Members         []*Member `json:"members,omitempty"`
}

// NewCluster returns an empty cluster of serviceName.
func NewCluster(serviceName, clusterID, autoscalePolicy string) *Cluster {
	return &Cluster{ServiceName: serviceName, ClusterID: clusterID, AutoscalePolicy: autoscalePolicy}
}

// AddHostName appends a host name.
func (c *Cluster) AddHostName(name string) {
	c.HostNames = append(c.HostNames, name)
}

// AddMember appends m.
func (c *Cluster) AddMember(m *Member) {
	c.Members = append(c.Members, m)
}

// NewMember returns a member of this cluster in the Created state.
func (c *Cluster) NewMember(memberID string) *Member {
	return &Member{
		ServiceName: c.ServiceName,
		ClusterID:   c.ClusterID,
		MemberID:    memberID,
		Status:      StatusCreated,
	}
}

// Member returns the member with id, or nil.
func (c *Cluster) Member(id string) *Member {
	for _, m := range c.Members {
		if m.MemberID == id {
			return m
		}
	}
	return nil
}

// Service is a deployable service type.
type Service struct {
	Name     string     `json:"service_name"`
	Ports    []Port     `json:"ports,omitempty"`
	Clusters []*Cluster `json:"clusters,omitempty"`
}

// NewService returns an empty service.
func NewService(name string) *Service {
	return &Service{Name: name}
}

// AddPort appends p.
func (s *Service) AddPort(p Port) {
	s.Ports = append(s.Ports, p)
}

// AddCluster appends c.
func (s *Service) AddCluster(c *Cluster) {
	s.Clusters = append(s.Clusters, c)
}

// Cluster returns the cluster with id, or nil.
func (s *Service) Cluster(id string) *Cluster {
	for _, c := range s.Clusters {
		if c.ClusterID == id {
			return c
		}
	}
	return nil
}

// Topology is the full set of services.
type Topology struct {
	Services []*Service `json:"services"`
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{Services: []*Service{}}
}

// AddService appends s.
func (t *Topology) AddService(s *Service) {
	t.Services = append(t.Services, s)
}

// Service returns the service named name, or nil.
func (t *Topology) Service(name string) *Service {
	for _, s := range t.Services {
		if s.Name == name {
			return s
		}
	}
	return nil
}
