package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/protobuf"
)

var ErrMalformedPayload = errors.New("malformed document event payload")

var jsonOptions = protojson.UnmarshalOptions{DiscardUnknown: true}

// Decode parses the body of a Firestore trigger request.
// Eventarc sends application/protobuf unless the trigger was created with
// a JSON data content type; an empty content type is read as JSON.
func Decode(contentType string, body []byte) (*firestoredata.DocumentEventData, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	var data firestoredata.DocumentEventData
	var err error
	switch contentType {
	case ContentTypeProtobuf, "application/x-protobuf":
		err = proto.Unmarshal(body, &data)
	case ContentTypeJSON, "":
		err = jsonOptions.Unmarshal(body, &data)
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrMalformedPayload, contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return &data, nil
}

// DocumentID picks the id of the changed document: the new value first,
// then the old value, then the CloudEvent subject ("documents/listings/<id>").
func DocumentID(data *firestoredata.DocumentEventData, subject string) string {
	if id := lastSegment(data.GetValue().GetName()); id != "" {
		return id
	}
	if id := lastSegment(data.GetOldValue().GetName()); id != "" {
		return id
	}
	return lastSegment(subject)
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
