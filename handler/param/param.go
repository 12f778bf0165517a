package param

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/spf13/cast"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("json")
	d.IgnoreUnknownKeys(true)
	return d
}()

// Binding decodes route params, query values and an optional json body into v.
// Route params win over query values.
func Binding(r *http.Request, v interface{}) error {
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return err
		}
	}

	values := url.Values{}
	for key, vs := range r.URL.Query() {
		for _, value := range vs {
			values.Add(key, value)
		}
	}

	if c := chi.RouteContext(r.Context()); c != nil {
		for i, key := range c.URLParams.Keys {
			values.Set(key, cast.ToString(c.URLParams.Values[i]))
		}
	}

	return decoder.Decode(v, values)
}
