package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"time"

	"community-platform-backend/internal/service"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Form posts carry datetime-local values or RFC 3339 timestamps
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

var (
	formDecoder = newFormDecoder()
	validate    = newValidator()
)

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if vals[0] == "" {
			return time.Time{}, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, vals[0]); err == nil {
				return t, nil
			}
		}
		return nil, errors.New("invalid date")
	}, time.Time{})
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if vals[0] == "" {
			return uuid.Nil, nil
		}
		return uuid.Parse(vals[0])
	}, uuid.UUID{})
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email address",
	"min":      "is too short",
	"max":      "is too long",
	"url":      "must be a valid URL",
	"oneof":    "has an unsupported value",
	"uuid":     "must be a valid id",
	"eqfield":  "does not match",
}

// decodeForm parses the posted form into dst and validates it. Problems are
// reported as a service.ValidationError keyed by form field name.
func decodeForm(r *http.Request, dst any) error {
	if err := parseForm(r); err != nil {
		return service.NewValidationError("form", "could not read form")
	}

	fields := map[string][]string{}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		var derrs form.DecodeErrors
		if !errors.As(err, &derrs) {
			return err
		}
		for name := range derrs {
			fields[name] = append(fields[name], "has an invalid format")
		}
		return &service.ValidationError{Fields: fields}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msg, ok := validationMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			fields[fe.Field()] = append(fields[fe.Field()], msg)
		}
		return &service.ValidationError{Fields: fields}
	}
	return nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if r.MultipartForm != nil {
			return nil
		}
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

const multipartMemory = 8 << 20

// formFile returns the uploaded file under name. The caller closes it.
func formFile(r *http.Request, name string) (service.FileInput, multipart.File, error) {
	if err := parseForm(r); err != nil {
		return service.FileInput{}, nil, service.NewValidationError(name, "could not read upload")
	}
	file, header, err := r.FormFile(name)
	if err != nil {
		return service.FileInput{}, nil, service.NewValidationError(name, "file is required")
	}
	return service.FileInput{Filename: header.Filename, Body: file, Size: header.Size}, file, nil
}

// pathUUID parses a route variable holding an id
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(varsOf(r)[name])
	if err != nil {
		return uuid.Nil, service.NewValidationError(name, "must be a valid id")
	}
	return id, nil
}
