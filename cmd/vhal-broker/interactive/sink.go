package interactive

import (
	"fmt"

	"github.com/carprop/vhal-go/pkg/broker"
	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// OnGetValues prints read results.
func (s *Shell) OnGetValues(batch bulk.Batch[vehicle.GetValueResult]) error {
	results, err := bulk.Unpack(batch)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Prop == nil {
			fmt.Fprintf(s.out, "[get #%d] %s\n", r.RequestID, r.Status)
			continue
		}
		fmt.Fprintf(s.out, "[get #%d] %s %s = %s\n", r.RequestID, r.Status, s.keyName(r.Prop.Key()), r.Prop.Value)
	}
	return nil
}

// OnSetValues prints write results.
func (s *Shell) OnSetValues(batch bulk.Batch[vehicle.SetValueResult]) error {
	results, err := bulk.Unpack(batch)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(s.out, "[set #%d] %s\n", r.RequestID, r.Status)
	}
	return nil
}

// OnPropertyEvent prints property events.
func (s *Shell) OnPropertyEvent(values []vehicle.PropertyValue) error {
	for _, v := range values {
		fmt.Fprintf(s.out, "[event] %s = %s\n", s.keyName(v.Key()), v.Value)
	}
	return nil
}

var _ broker.ClientSink = (*Shell)(nil)
