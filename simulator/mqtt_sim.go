package main

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func newMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}

type statusPayload struct {
	CurrentLoad float64 `json:"current_load"`
	Status      string  `json:"status"`
}

// publishStatus sends one status update for the station on
// <prefix>/<id>/status.
func publishStatus(cli paho.Client, prefix string, id int, load float64, status string) error {
	payload, err := json.Marshal(statusPayload{CurrentLoad: load, Status: status})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%d/status", prefix, id)
	token := cli.Publish(topic, 0, false, payload)
	token.Wait()
	return token.Error()
}
