package topology

// EventType names an event in the envelope's event_type field.
type EventType string

// Event types.
const (
	TypeCompleteTopology EventType = "CompleteTopology"
	TypeServiceCreated   EventType = "ServiceCreated"
	TypeServiceRemoved   EventType = "ServiceRemoved"
	TypeClusterCreated   EventType = "ClusterCreated"
	TypeClusterRemoved   EventType = "ClusterRemoved"
	TypeInstanceSpawned  EventType = "InstanceSpawned"
	TypeMemberStarted    EventType = "MemberStarted"
	TypeMemberActivated  EventType = "MemberActivated"
	TypeMemberSuspended  EventType = "MemberSuspended"
	TypeMemberTerminated EventType = "MemberTerminated"
)

// Event is a topology lifecycle event.
type Event interface {
	Type() EventType
}

// CompleteTopology carries a snapshot of the whole topology.
type CompleteTopology struct {
	Topology *Topology `json:"topology"`
}

func (CompleteTopology) Type() EventType { return TypeCompleteTopology }

// ServiceCreated announces a new service and its ports.
type ServiceCreated struct {
	ServiceName string `json:"service_name"`
	Ports       []Port `json:"ports,omitempty"`
}

func (ServiceCreated) Type() EventType { return TypeServiceCreated }

// AddPort appends p.
func (e *ServiceCreated) AddPort(p Port) {
	e.Ports = append(e.Ports, p)
}

// ServiceRemoved announces that a service and all its clusters are gone.
type ServiceRemoved struct {
	ServiceName string `json:"service_name"`
}

func (ServiceRemoved) Type() EventType { return TypeServiceRemoved }

// ClusterCreated announces a new cluster of a service.
type ClusterCreated struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
	HostName    string `json:"host_name"`
	TenantRange string `json:"tenant_range,omitempty"`
}

func (ClusterCreated) Type() EventType { return TypeClusterCreated }

// ClusterRemoved announces that a cluster is gone.
type ClusterRemoved struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
}

func (ClusterRemoved) Type() EventType { return TypeClusterRemoved }

// InstanceSpawned announces that a member instance was requested.
type InstanceSpawned struct {
	ServiceName     string `json:"service_name"`
	ClusterID       string `json:"cluster_id"`
	MemberID        string `json:"member_id"`
	AutoscalePolicy string `json:"autoscale_policy,omitempty"`
}

func (InstanceSpawned) Type() EventType { return TypeInstanceSpawned }

// MemberStarted announces that a member has booted.
type MemberStarted struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
	MemberID    string `json:"member_id"`
}

func (MemberStarted) Type() EventType { return TypeMemberStarted }

// MemberActivated announces that a member is serving traffic.
type MemberActivated struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
	MemberID    string `json:"member_id"`
	MemberIP    string `json:"member_ip,omitempty"`
	Ports       []Port `json:"ports,omitempty"`
}

func (MemberActivated) Type() EventType { return TypeMemberActivated }

// AddPort appends p.
func (e *MemberActivated) AddPort(p Port) {
	e.Ports = append(e.Ports, p)
}

// MemberSuspended announces that a member stopped taking traffic.
type MemberSuspended struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
	MemberID    string `json:"member_id"`
}

func (MemberSuspended) Type() EventType { return TypeMemberSuspended }

// MemberTerminated announces that a member is gone.
type MemberTerminated struct {
	ServiceName string `json:"service_name"`
	ClusterID   string `json:"cluster_id"`
	MemberID    string `json:"member_id"`
}

func (MemberTerminated) Type() EventType { return TypeMemberTerminated }
