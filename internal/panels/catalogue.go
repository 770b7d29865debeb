package panels

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/mgmt"
)

// Column maps a display title to a field of a collection item.
type Column struct {
	Title string
	Field string
	// Value overrides Field when set.
	Value func(mgmt.Item) string
}

func (c Column) text(it mgmt.Item) string {
	if c.Value != nil {
		return c.Value(it)
	}
	return it.Text(c.Field)
}

// ListSpec builds a spec that reads a collection and shows the given columns.
// path may reference params as {service}, {cache}, {topic}, {subscriber}.
func ListSpec(id, title, path string, columns []Column, requires ...Param) Spec {
	return Spec{
		ID:       id,
		Title:    title,
		Requires: requires,
		Fetch: func(ctx context.Context, deps Deps, params Params) (Content, error) {
			if deps.Mgmt == nil {
				return Content{}, errNoManagement()
			}
			items, err := mgmt.GetItems(ctx, deps.Mgmt, expandPath(path, params))
			if err != nil {
				return Content{}, err
			}
			return itemsContent(items, columns), nil
		},
	}
}

// ObjectSpec builds a spec that reads a single resource and shows named fields.
func ObjectSpec(id, title, path string, fields []Column, requires ...Param) Spec {
	return Spec{
		ID:       id,
		Title:    title,
		Requires: requires,
		Fetch: func(ctx context.Context, deps Deps, params Params) (Content, error) {
			if deps.Mgmt == nil {
				return Content{}, errNoManagement()
			}
			obj, err := mgmt.GetObject(ctx, deps.Mgmt, expandPath(path, params))
			if err != nil {
				return Content{}, err
			}
			out := Content{Fields: make([]Field, len(fields))}
			for i, f := range fields {
				out.Fields[i] = Field{Name: f.Title, Value: orDash(f.text(obj))}
			}
			return out, nil
		},
	}
}

func itemsContent(items []mgmt.Item, columns []Column) Content {
	c := Content{
		Columns: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(items)),
		Summary: fmt.Sprintf("%d total", len(items)),
	}
	for i, col := range columns {
		c.Columns[i] = col.Title
	}
	for _, it := range items {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = orDash(col.text(it))
		}
		c.Rows = append(c.Rows, row)
	}
	return c
}

func expandPath(path string, params Params) string {
	for _, p := range []Param{ParamService, ParamCache, ParamTopic, ParamSubscriber} {
		path = strings.ReplaceAll(path, "{"+string(p)+"}", url.PathEscape(params[p]))
	}
	return path
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func errNoManagement() error {
	return errors.New(errors.ErrConfig,
		"No management URL configured",
		"Pass --url or set 'url' for the cluster in config")
}

// megabytes renders a byte-count field in MB.
func megabytes(field string) func(mgmt.Item) string {
	return func(it mgmt.Item) string {
		if _, ok := it[field]; !ok {
			return ""
		}
		return strconv.FormatInt(it.Int(field)/(1024*1024), 10)
	}
}

// heapUsed renders memoryMaxMB - memoryAvailableMB.
func heapUsed(it mgmt.Item) string {
	if _, ok := it["memoryMaxMB"]; !ok {
		return ""
	}
	return strconv.FormatInt(it.Int("memoryMaxMB")-it.Int("memoryAvailableMB"), 10)
}

// percent renders a 0..1 ratio field as a percentage.
func percent(field string) func(mgmt.Item) string {
	return func(it mgmt.Item) string {
		if _, ok := it[field]; !ok {
			return ""
		}
		return strconv.FormatFloat(it.Float(field)*100, 'f', 1, 64) + "%"
	}
}

// machinesSpec groups members by machine.
func machinesSpec() Spec {
	return Spec{
		ID:    "machines",
		Title: "Machines",
		Fetch: func(ctx context.Context, deps Deps, _ Params) (Content, error) {
			if deps.Mgmt == nil {
				return Content{}, errNoManagement()
			}
			members, err := mgmt.GetItems(ctx, deps.Mgmt, "members")
			if err != nil {
				return Content{}, err
			}

			type machine struct {
				members    int
				processors int64
				load       float64
				heapMB     int64
			}
			byName := make(map[string]*machine)
			for _, m := range members {
				name := orDash(m.Text("machineName"))
				mc, ok := byName[name]
				if !ok {
					mc = &machine{}
					byName[name] = mc
				}
				mc.members++
				// Largest count wins; members that have not reported say 0.
				if n := m.Int("processorCount"); n > mc.processors {
					mc.processors = n
				}
				if l := m.Float("systemLoadAverage"); l > mc.load {
					mc.load = l
				}
				mc.heapMB += m.Int("memoryMaxMB")
			}

			names := make([]string, 0, len(byName))
			for n := range byName {
				names = append(names, n)
			}
			sort.Strings(names)

			c := Content{
				Columns: []string{"MACHINE", "MEMBERS", "PROCESSORS", "LOAD", "HEAP MB"},
				Summary: fmt.Sprintf("%d machines, %d members", len(names), len(members)),
			}
			for _, n := range names {
				mc := byName[n]
				c.Rows = append(c.Rows, []string{
					n,
					strconv.Itoa(mc.members),
					strconv.FormatInt(mc.processors, 10),
					strconv.FormatFloat(mc.load, 'f', 2, 64),
					strconv.FormatInt(mc.heapMB, 10),
				})
			}
			return c, nil
		},
	}
}

// healthSummarySpec shows the latest health snapshot.
func healthSummarySpec() Spec {
	return Spec{
		ID:    "health-summary",
		Title: "Health Summary",
		Fetch: func(ctx context.Context, deps Deps, _ Params) (Content, error) {
			if deps.Health == nil {
				return Content{}, errors.New(errors.ErrEndpoint,
					"No health endpoints configured",
					"Pass -e host:port[,host:port] or -n host:port")
			}
			snap := deps.Health.Snapshot(ctx)
			c := Content{
				Columns: health.TableHeaders,
				Rows:    health.TableRows(snap),
				Summary: fmt.Sprintf("%d/%d safe, all safe: %t", snap.SafeCount(), len(snap.Endpoints), snap.AllSafe),
			}
			for _, w := range snap.Warnings {
				c.Fields = append(c.Fields, Field{Name: "warning", Value: w})
			}
			return c, nil
		},
	}
}

// Builtin returns the built-in panel catalogue.
func Builtin() []Spec {
	return []Spec{
		ObjectSpec("cluster-overview", "Cluster Overview", "", []Column{
			{Title: "Cluster", Field: "clusterName"},
			{Title: "Version", Field: "version"},
			{Title: "Size", Field: "clusterSize"},
			{Title: "Running", Field: "running"},
			{Title: "Departures", Field: "membersDepartureCount"},
			{Title: "License", Field: "licenseMode"},
		}),
		ListSpec("members", "Members", "members", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "ADDRESS", Field: "unicastAddress"},
			{Title: "MACHINE", Field: "machineName"},
			{Title: "ROLE", Field: "roleName"},
			{Title: "HEAP MAX", Field: "memoryMaxMB"},
			{Title: "HEAP USED", Value: heapUsed},
		}),
		machinesSpec(),
		ListSpec("network-stats", "Network Stats", "members", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "PUB SUCCESS", Value: percent("publisherSuccessRate")},
			{Title: "REC SUCCESS", Value: percent("receiverSuccessRate")},
			{Title: "SENT", Field: "packetsSent"},
			{Title: "RECEIVED", Field: "packetsReceived"},
			{Title: "RESENT", Field: "packetsResent"},
		}),
		ListSpec("services", "Services", "services", []Column{
			{Title: "SERVICE", Field: "name"},
			{Title: "TYPE", Field: "type"},
			{Title: "MEMBERS", Field: "memberCount"},
			{Title: "STATUS HA", Field: "statusHA"},
			{Title: "ENDANGERED", Field: "partitionsEndangered"},
			{Title: "UNBALANCED", Field: "partitionsUnbalanced"},
		}),
		ListSpec("caches", "Caches", "caches", []Column{
			{Title: "SERVICE", Field: "service"},
			{Title: "CACHE", Field: "name"},
			{Title: "SIZE", Field: "size"},
			{Title: "MEMORY MB", Value: megabytes("unitsBytes")},
			{Title: "PUTS", Field: "totalPuts"},
			{Title: "GETS", Field: "totalGets"},
		}),
		ListSpec("proxies", "Proxy Servers", "proxies", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "SERVICE", Field: "name"},
			{Title: "HOST", Field: "hostIP"},
			{Title: "CONNECTIONS", Field: "connectionCount"},
			{Title: "BYTES SENT", Field: "totalBytesSent"},
			{Title: "BYTES RECEIVED", Field: "totalBytesReceived"},
		}),
		ListSpec("http-servers", "HTTP Servers", "httpServers", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "SERVICE", Field: "name"},
			{Title: "TYPE", Field: "httpServerType"},
			{Title: "REQUESTS", Field: "totalRequestCount"},
			{Title: "ERRORS", Field: "totalErrorCount"},
		}),
		ListSpec("persistence", "Persistence", "persistence", []Column{
			{Title: "SERVICE", Field: "name"},
			{Title: "MODE", Field: "persistenceMode"},
			{Title: "ACTIVE MB", Value: megabytes("persistenceActiveSpaceUsed")},
			{Title: "LATENCY AVG", Field: "persistenceLatencyAverage"},
			{Title: "SNAPSHOTS", Field: "snapshots"},
		}),
		ListSpec("topics", "Topics", "topics", []Column{
			{Title: "SERVICE", Field: "service"},
			{Title: "TOPIC", Field: "name"},
			{Title: "CHANNELS", Field: "channelCount"},
			{Title: "PUBLISHED", Field: "publishedCount"},
		}),
		ListSpec("executors", "Executors", "executors", []Column{
			{Title: "NAME", Field: "name"},
			{Title: "MEMBERS", Field: "memberCount"},
			{Title: "IN PROGRESS", Field: "tasksInProgressCount"},
			{Title: "COMPLETED", Field: "tasksCompletedCount"},
			{Title: "REJECTED", Field: "tasksRejectedCount"},
		}),
		ListSpec("reporters", "Reporters", "reporters", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "STATE", Field: "state"},
			{Title: "OUTPUT", Field: "outputPath"},
			{Title: "BATCH", Field: "currentBatch"},
			{Title: "LAST REPORT", Field: "lastReport"},
		}),
		healthSummarySpec(),
		ListSpec("service-members", "Service Members", "services/{service}/members", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "THREADS", Field: "threadCount"},
			{Title: "IDLE", Field: "threadIdleCount"},
			{Title: "TASK BACKLOG", Field: "taskBacklog"},
			{Title: "REQUESTS", Field: "requestTotalCount"},
			{Title: "OWNED PRIMARY", Field: "ownedPartitionsPrimary"},
		}, ParamService),
		ObjectSpec("service-partitions", "Service Partitions", "services/{service}/partition", []Column{
			{Title: "Strategy", Field: "strategyName"},
			{Title: "Partitions", Field: "partitionCount"},
			{Title: "Backups", Field: "backupCount"},
			{Title: "Service Nodes", Field: "serviceNodeCount"},
			{Title: "Service Machines", Field: "serviceMachineCount"},
			{Title: "Last Analysis", Field: "lastAnalysisTime"},
		}, ParamService),
		ListSpec("cache-access", "Cache Access", "caches/{cache}/members", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "SIZE", Field: "size"},
			{Title: "GETS", Field: "totalGets"},
			{Title: "PUTS", Field: "totalPuts"},
			{Title: "HITS", Field: "cacheHits"},
			{Title: "MISSES", Field: "cacheMisses"},
		}, ParamCache),
		ListSpec("cache-storage", "Cache Storage", "caches/{cache}/storage", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "TIER", Field: "tier"},
			{Title: "LOCKS GRANTED", Field: "locksGranted"},
			{Title: "LISTENERS", Field: "listenerRegistrations"},
			{Title: "MEMORY MB", Value: megabytes("unitsBytes")},
		}, ParamCache),
		ListSpec("cache-indexes", "Cache Indexes", "caches/{cache}/indexes", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "INDEX", Field: "indexInfo"},
			{Title: "BUILD MS", Field: "indexingTotalMillis"},
		}, ParamCache),
		ListSpec("topic-members", "Topic Members", "services/{service}/topics/{topic}/members", []Column{
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "CHANNELS", Field: "channelCount"},
			{Title: "PUBLISHED", Field: "publishedCount"},
			{Title: "PAGE CAPACITY", Field: "pageCapacity"},
		}, ParamService, ParamTopic),
		ListSpec("subscribers", "Subscribers", "services/{service}/topics/{topic}/subscribers", []Column{
			{Title: "SUBSCRIBER", Field: "id"},
			{Title: "NODE ID", Field: "nodeId"},
			{Title: "STATE", Field: "stateName"},
			{Title: "CHANNELS", Field: "channelsAllocated"},
			{Title: "RECEIVED", Field: "receivedCount"},
			{Title: "BACKLOG", Field: "backlog"},
		}, ParamService, ParamTopic),
		ListSpec("subscriber-channels", "Subscriber Channels", "services/{service}/topics/{topic}/subscribers/{subscriber}/channels", []Column{
			{Title: "CHANNEL", Field: "channel"},
			{Title: "OWNED", Field: "owned"},
			{Title: "HEAD", Field: "head"},
			{Title: "LAST COMMIT", Field: "lastCommit"},
			{Title: "RECEIVED", Field: "receivedCount"},
		}, ParamService, ParamTopic, ParamSubscriber),
	}
}

// NewBuiltinRegistry returns a registry holding the built-in catalogue.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Builtin()...)
	return r
}
