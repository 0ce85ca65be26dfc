//go:build integration

package hwbridge

import (
	"context"
	"testing"
	"time"

	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -count=1 -v ./pkg/hwbridge/...

func integrationMQTT(clientID string) MQTTConfig {
	cfg := DefaultMQTTConfig()
	cfg.ClientID = clientID
	return cfg
}

func TestIntegration_BridgeRoundTrip(t *testing.T) {
	cfg := Config{Prefix: "vhal-int", ResponseTimeout: 5 * time.Second}

	hwSide, err := DialMQTT(integrationMQTT("vhal-int-hardware"))
	if err != nil {
		t.Fatalf("DialMQTT(hardware) error = %v", err)
	}
	defer hwSide.Close()

	fake := hardware.NewFake(vehicle.PropertyValue{Property: propSpeed, Value: vehicle.Float(42)})
	if _, err := NewResponder(hwSide, fake, cfg); err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	brokerSide, err := DialMQTT(integrationMQTT("vhal-int-broker"))
	if err != nil {
		t.Fatalf("DialMQTT(broker) error = %v", err)
	}
	b, err := NewBridge(brokerSide, cfg)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}
	defer b.Close()

	got := make(chan []vehicle.GetValueResult, 1)
	err = b.GetValues(context.Background(), []vehicle.GetValueRequest{
		{RequestID: 1, Prop: vehicle.PropertyValue{Property: propSpeed}},
	}, func(results []vehicle.GetValueResult) { got <- results })
	if err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}

	select {
	case results := <-got:
		if len(results) != 1 || results[0].Status != vehicle.StatusOK {
			t.Fatalf("results = %+v, want one OK result", results)
		}
		if results[0].Prop == nil || results[0].Prop.Value.FloatValues[0] != 42 {
			t.Errorf("value = %+v, want 42", results[0].Prop)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no response over MQTT")
	}
}

func TestIntegration_EventForwarding(t *testing.T) {
	cfg := Config{Prefix: "vhal-int-ev"}

	hwSide, err := DialMQTT(integrationMQTT("vhal-int-ev-hardware"))
	if err != nil {
		t.Fatalf("DialMQTT(hardware) error = %v", err)
	}
	defer hwSide.Close()
	fake := hardware.NewFake()
	if _, err := NewResponder(hwSide, fake, cfg); err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	brokerSide, err := DialMQTT(integrationMQTT("vhal-int-ev-broker"))
	if err != nil {
		t.Fatalf("DialMQTT(broker) error = %v", err)
	}
	b, err := NewBridge(brokerSide, cfg)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}
	defer b.Close()

	got := make(chan []vehicle.PropertyValue, 1)
	b.OnPropertyChange(func(values []vehicle.PropertyValue) { got <- values })

	// Give the subscription time to settle on the server.
	time.Sleep(200 * time.Millisecond)
	fake.InjectEvent(vehicle.PropertyValue{Property: propFan, AreaID: 1, Value: vehicle.Int32(4)})

	select {
	case values := <-got:
		if len(values) != 1 || values[0].Property != propFan {
			t.Fatalf("values = %+v", values)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("event not forwarded over MQTT")
	}
}
