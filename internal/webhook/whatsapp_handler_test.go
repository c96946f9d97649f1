package webhook

import (
	"encoding/json"
	"testing"
)

const samplePayload = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"id": "102290129340398",
		"changes": [{
			"field": "messages",
			"value": {
				"messaging_product": "whatsapp",
				"metadata": {
					"display_phone_number": "5511999990000",
					"phone_number_id": "106540352242922"
				},
				"contacts": [{
					"profile": {"name": "Dra. Carla"},
					"wa_id": "5527997790001"
				}],
				"messages": [{
					"from": "5527997790001",
					"id": "wamid.HBgLNTUyNzk5Nzc5MDAwMRUCABIYFjNFQjBEMUZF",
					"timestamp": "1724940000",
					"type": "text",
					"text": {"body": "preciso de 50 sondas para uma cirurgia urgente hoje"}
				}]
			}
		}]
	}]
}`

func TestDecodeCloudWebhook(t *testing.T) {
	var payload CloudWebhook
	if err := json.Unmarshal([]byte(samplePayload), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if len(payload.Entry) != 1 || len(payload.Entry[0].Changes) != 1 {
		t.Fatalf("unexpected envelope shape: %+v", payload)
	}

	change := payload.Entry[0].Changes[0]
	if change.Field != "messages" {
		t.Errorf("field = %q, expected messages", change.Field)
	}
	if len(change.Value.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(change.Value.Messages))
	}

	msg := change.Value.Messages[0]
	if msg.Type != "text" || msg.Text == nil {
		t.Fatalf("message type = %q, text = %v", msg.Type, msg.Text)
	}
	if msg.Text.Body != "preciso de 50 sondas para uma cirurgia urgente hoje" {
		t.Errorf("body = %q", msg.Text.Body)
	}
	if msg.From != "5527997790001" {
		t.Errorf("from = %q", msg.From)
	}

	if len(change.Value.Contacts) != 1 || change.Value.Contacts[0].Profile.Name != "Dra. Carla" {
		t.Errorf("contacts = %+v", change.Value.Contacts)
	}
}

func TestDecodeAudioMessage(t *testing.T) {
	raw := `{
		"from": "5527997790001",
		"id": "wamid.audio1",
		"timestamp": "1724940100",
		"type": "audio",
		"audio": {"id": "mediaid123", "mime_type": "audio/ogg; codecs=opus"}
	}`

	var msg CloudMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("failed to decode audio message: %v", err)
	}
	if msg.Audio == nil {
		t.Fatal("audio block not decoded")
	}
	if msg.Audio.ID != "mediaid123" {
		t.Errorf("media id = %q", msg.Audio.ID)
	}
	if msg.Audio.MimeType != "audio/ogg; codecs=opus" {
		t.Errorf("mime type = %q", msg.Audio.MimeType)
	}
	if msg.Text != nil {
		t.Error("text block decoded for an audio message")
	}
}
