package sequencer

import "github.com/nerrad567/topology-publisher/internal/topology"

// DefaultScript returns the sample sequence: a complete topology with one
// application server cluster of three members, then an ESB service brought
// up step by step to an active member.
func DefaultScript() []topology.Event {
	topo := topology.New()

	appServer := topology.NewService("AppServer")
	appServer.AddPort(topology.Port{Protocol: "https", Value: 9764, Proxy: 90})
	topo.AddService(appServer)

	cluster := topology.NewCluster(appServer.Name, "appserver-cluster", "p1")
	cluster.AddHostName("appserver.foo.org")
	cluster.TenantRange = "1-*"
	appServer.AddCluster(cluster)

	for _, id := range []string{"m1", "m2", "m3"} {
		m := cluster.NewMember(id)
		m.MemberIP = "10.0.0.1"
		m.Status = topology.StatusActivated
		cluster.AddMember(m)
	}

	esb := &topology.ServiceCreated{ServiceName: "ESB"}
	esb.AddPort(topology.Port{Protocol: "https", Value: 9764, Proxy: 90})

	esbCluster := topology.ClusterCreated{
		ServiceName: "ESB",
		ClusterID:   "esb-cluster",
		HostName:    "esb.foo.org",
		TenantRange: "1-*",
	}

	activated := &topology.MemberActivated{
		ServiceName: esbCluster.ServiceName,
		ClusterID:   esbCluster.ClusterID,
		MemberID:    "m1",
		MemberIP:    "10.0.0.1",
	}
	activated.AddPort(topology.Port{Protocol: "http", Value: 9764, Proxy: 90})

	return []topology.Event{
		topology.CompleteTopology{Topology: topo},
		esb,
		esbCluster,
		topology.InstanceSpawned{
			ServiceName:     esbCluster.ServiceName,
			ClusterID:       esbCluster.ClusterID,
			MemberID:        "m1",
			AutoscalePolicy: "p1",
		},
		topology.MemberStarted{
			ServiceName: esbCluster.ServiceName,
			ClusterID:   esbCluster.ClusterID,
			MemberID:    "m1",
		},
		activated,
	}
}
