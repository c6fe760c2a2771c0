package param

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.SetAliasTag("json")
	return d
}()

// Binding binds query values and, for requests carrying a body, the json
// payload onto v.
func Binding(r *http.Request, v interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	if len(r.Form) > 0 {
		if err := decoder.Decode(v, r.Form); err != nil {
			return err
		}
	}

	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
