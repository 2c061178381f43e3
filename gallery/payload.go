package gallery

import (
	"encoding/json"

	"github.com/cnosuke/sheet-gallery/types"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// ErrUnexpectedPayload is returned when the body is valid JSON but neither a
// list of records nor an error object.
var ErrUnexpectedPayload = errors.New("unexpected payload shape")

// ErrInvalidJSON marks errors for bodies that cannot be parsed as JSON. The
// returned error carries the parser's own message.
var ErrInvalidJSON = errors.New("invalid JSON in response body")

// DecodePayload turns the endpoint body into its tagged variant.
func DecodePayload(body []byte) (*types.Payload, error) {
	if !gjson.ValidBytes(body) {
		return nil, syntaxError(body)
	}
	root := gjson.ParseBytes(body)

	if root.IsObject() {
		if msg := lastField(root, "error"); truthy(msg) {
			return &types.Payload{Kind: types.PayloadError, Message: msg.String()}, nil
		}
		return nil, errors.Wrap(ErrUnexpectedPayload, "object without error field")
	}

	if !root.IsArray() {
		return nil, errors.Wrapf(ErrUnexpectedPayload, "got %s", root.Type.String())
	}

	images := []types.ImageRecord{}
	var itemErr error
	root.ForEach(func(_, item gjson.Result) bool {
		// A null record has no fields to read.
		if item.Type == gjson.Null {
			itemErr = errors.Wrapf(ErrUnexpectedPayload, "record %d is null", len(images))
			return false
		}
		images = append(images, types.ImageRecord{
			ImageURL: field(item, "imageUrl"),
			Caption:  field(item, "caption"),
			Link:     field(item, "link"),
		})
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}

	return &types.Payload{Kind: types.PayloadImages, Images: images}, nil
}

func syntaxError(body []byte) error {
	err := json.Unmarshal(body, new(json.RawMessage))
	if err == nil {
		return ErrInvalidJSON
	}
	return errors.Mark(err, ErrInvalidJSON)
}

// lastField returns the value of name in obj. With duplicate keys the last
// occurrence wins.
func lastField(obj gjson.Result, name string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.Str == name {
			found = value
		}
		return true
	})
	return found
}

// field reads an optional string attribute. Falsy values read as absent.
func field(item gjson.Result, name string) string {
	if !item.IsObject() {
		return ""
	}
	v := lastField(item, name)
	if !truthy(v) {
		return ""
	}
	return v.String()
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	default:
		return false
	}
}
