// Package mqtt connects harbour to an MQTT broker.
//
// Sail events are published to harbour/voyage/{boat}/sail. The client keeps a
// retained status message on harbour/system/status: "online" after connect,
// "offline" on a graceful Close, and a Last Will "offline" if the process
// dies without closing.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if errors.Is(err, mqtt.ErrDisabled) {
//	    // run without a broker
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllVoyageSails(), 1,
//	    func(topic string, payload []byte) error {
//	        return nil
//	    })
//
// Subscriptions are restored after an automatic reconnect.
package mqtt
