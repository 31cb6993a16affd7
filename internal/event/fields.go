package event

import (
	"fmt"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
)

// Fields returns the document fields as plain Go values.
// A nil document yields a nil map, mirroring a snapshot without data.
func Fields(doc *firestoredata.Document) (map[string]interface{}, error) {
	if doc == nil {
		return nil, nil
	}
	return fieldMap(doc.GetFields())
}

func fieldMap(fields map[string]*firestoredata.Value) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		v, err := plainValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrMalformedPayload, name, err)
		}
		out[name] = v
	}
	return out, nil
}

func plainValue(value *firestoredata.Value) (interface{}, error) {
	switch kind := value.GetValueType().(type) {
	case *firestoredata.Value_NullValue:
		return nil, nil
	case *firestoredata.Value_BooleanValue:
		return kind.BooleanValue, nil
	case *firestoredata.Value_IntegerValue:
		return kind.IntegerValue, nil
	case *firestoredata.Value_DoubleValue:
		return kind.DoubleValue, nil
	case *firestoredata.Value_TimestampValue:
		return kind.TimestampValue.AsTime(), nil
	case *firestoredata.Value_StringValue:
		return kind.StringValue, nil
	case *firestoredata.Value_BytesValue:
		return kind.BytesValue, nil
	case *firestoredata.Value_ReferenceValue:
		return kind.ReferenceValue, nil
	case *firestoredata.Value_GeoPointValue:
		return map[string]interface{}{
			"latitude":  kind.GeoPointValue.GetLatitude(),
			"longitude": kind.GeoPointValue.GetLongitude(),
		}, nil
	case *firestoredata.Value_MapValue:
		return fieldMap(kind.MapValue.GetFields())
	case *firestoredata.Value_ArrayValue:
		values := make([]interface{}, 0, len(kind.ArrayValue.GetValues()))
		for _, item := range kind.ArrayValue.GetValues() {
			v, err := plainValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("value has no known kind")
	}
}
