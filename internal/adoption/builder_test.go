package adoption

import (
	"net"
	"net/netip"
	"reflect"
	"testing"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
	"github.com/edgelink-io/edgelink-core/internal/transport"
)

func testFirmware() config.FirmwareConfig {
	return config.FirmwareConfig{
		Name:      "Edgelink Sensor Node",
		ShortName: "sensor-node",
		Maker:     "Edgelink",
		Version:   "2.1.0",
		GithubURL: "https://github.com/edgelink-io/sensor-node",
	}
}

func testTransport(t *testing.T) *transport.Fake {
	t.Helper()
	fake := transport.NewFake()
	fake.SetLink(true)
	fake.SetIP(netip.MustParseAddr("192.168.1.52"))
	mac, err := net.ParseMAC("a4:cf:12:9b:1e:3d")
	if err != nil {
		t.Fatalf("ParseMAC() error = %v", err)
	}
	fake.SetMAC(mac)
	return fake
}

func getObject(t *testing.T, doc *jsontree.Object, key string) *jsontree.Object {
	t.Helper()
	child := doc.GetObject(key)
	if child == nil {
		t.Fatalf("document missing object section %q", key)
	}
	return child
}

// ====== Document Shape ======

func TestBuildSectionOrder(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	doc := builder.Build()
	want := []string{"firmware", "system", "network", "configSchema", "commandSchema"}
	if got := doc.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestBuildFirmwareSection(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	firmware := getObject(t, builder.Build(), "firmware")
	tests := []struct {
		key  string
		want string
	}{
		{"name", "Edgelink Sensor Node"},
		{"shortName", "sensor-node"},
		{"maker", "Edgelink"},
		{"version", "2.1.0"},
		{"githubUrl", "https://github.com/edgelink-io/sensor-node"},
	}
	for _, tt := range tests {
		got, ok := firmware.Get(tt.key)
		if !ok {
			t.Errorf("firmware section missing %q", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("firmware[%q] = %v, want %q", tt.key, got, tt.want)
		}
	}
}

func TestBuildOmitsEmptyGithubURL(t *testing.T) {
	firmware := testFirmware()
	firmware.GithubURL = ""
	builder := NewBuilder(firmware, testTransport(t))

	section := getObject(t, builder.Build(), "firmware")
	if _, ok := section.Get("githubUrl"); ok {
		t.Error("firmware section contains githubUrl, want omitted")
	}
}

func TestBuildNetworkSection(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	network := getObject(t, builder.Build(), "network")
	if got, _ := network.Get("mode"); got != "ethernet" {
		t.Errorf("network[mode] = %v, want %q", got, "ethernet")
	}
	if got, _ := network.Get("ip"); got != "192.168.1.52" {
		t.Errorf("network[ip] = %v, want %q", got, "192.168.1.52")
	}
	if got, _ := network.Get("mac"); got != "A4:CF:12:9B:1E:3D" {
		t.Errorf("network[mac] = %v, want %q", got, "A4:CF:12:9B:1E:3D")
	}
}

func TestBuildNetworkSectionWithoutIdentity(t *testing.T) {
	fake := transport.NewFake()
	builder := NewBuilder(testFirmware(), fake)

	network := getObject(t, builder.Build(), "network")
	if _, ok := network.Get("ip"); ok {
		t.Error("network section contains ip before address assignment")
	}
	if _, ok := network.Get("mac"); ok {
		t.Error("network section contains mac with no hardware address")
	}
}

// ====== Schema Envelopes ======

func TestSchemaEnvelopeFields(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	for _, key := range []string{"configSchema", "commandSchema"} {
		envelope := getObject(t, builder.Build(), key)
		if got, _ := envelope.Get("$schema"); got != schemaDraft {
			t.Errorf("%s[$schema] = %v, want %q", key, got, schemaDraft)
		}
		if got, _ := envelope.Get("title"); got != "sensor-node" {
			t.Errorf("%s[title] = %v, want %q", key, got, "sensor-node")
		}
		if got, _ := envelope.Get("type"); got != "object" {
			t.Errorf("%s[type] = %v, want %q", key, got, "object")
		}
		properties := envelope.GetObject("properties")
		if properties == nil {
			t.Fatalf("%s missing properties object", key)
		}
		if !properties.IsEmpty() {
			t.Errorf("%s properties not empty before any schema set", key)
		}
	}
}

func TestSetConfigSchemaReplacesWholesale(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	first, err := jsontree.Parse([]byte(`{"interval":{"type":"integer"}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	builder.SetConfigSchema(first)

	second, err := jsontree.Parse([]byte(`{"threshold":{"type":"number"}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	builder.SetConfigSchema(second)

	properties := getObject(t, builder.Build(), "configSchema").GetObject("properties")
	if properties == nil {
		t.Fatal("configSchema missing properties object")
	}
	if _, ok := properties.Get("interval"); ok {
		t.Error("properties retains key from replaced schema")
	}
	if properties.GetObject("threshold") == nil {
		t.Error("properties missing key from current schema")
	}
}

func TestBuildDoesNotAliasSchemaTrees(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	src, err := jsontree.Parse([]byte(`{"relay":{"type":"boolean"}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	builder.SetCommandSchema(src)

	doc := builder.Build()
	properties := getObject(t, doc, "commandSchema").GetObject("properties")
	properties.Set("injected", true)

	fresh := getObject(t, builder.Build(), "commandSchema").GetObject("properties")
	if _, ok := fresh.Get("injected"); ok {
		t.Error("mutating a built document leaked into the builder's schema tree")
	}
}

func TestBuildDeterministicSchemaSections(t *testing.T) {
	builder := NewBuilder(testFirmware(), testTransport(t))

	src, err := jsontree.Parse([]byte(`{"interval":{"type":"integer","minimum":1}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	builder.SetConfigSchema(src)

	first := getObject(t, builder.Build(), "configSchema").String()
	second := getObject(t, builder.Build(), "configSchema").String()
	if first != second {
		t.Errorf("configSchema differs across builds:\n%s\n%s", first, second)
	}
}

// ====== System Snapshot ======

func TestSystemSnapshotHeapMetrics(t *testing.T) {
	section := systemSnapshot()

	for _, key := range []string{"heapUsedBytes", "heapFreeBytes"} {
		if _, ok := section.Get(key); !ok {
			t.Errorf("system section missing %q", key)
		}
	}
}

func TestSystemSnapshotReportsBinaryUnderSketchKey(t *testing.T) {
	section := systemSnapshot()

	// os.Executable works under test binaries, so the metric is present
	// here even though the contract keeps it best-effort.
	if _, ok := section.Get("sketchSpaceUsedBytes"); !ok {
		t.Error(`system section missing "sketchSpaceUsedBytes"`)
	}
	if _, ok := section.Get("binarySizeBytes"); ok {
		t.Error("system section carries an undocumented binary-size key")
	}
}
