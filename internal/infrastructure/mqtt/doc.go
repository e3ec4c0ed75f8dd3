// Package mqtt provides MQTT connectivity for the simulator.
//
// The simulator uses MQTT in two directions:
//
//	sensor topics ──► Client.Subscribe ──► sensor.Feed ──► console loop
//	device state  ◄── activity.Publisher ◄── device listeners
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retained messages
//   - Subscriptions that survive reconnects
//   - Last Will and Testament on homesim/system/status
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(mqtt.Topics{}.DeviceState("Bedroom Fan"), []byte(`{"on":true}`))
package mqtt
