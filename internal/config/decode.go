package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

// decodeEnv sets fields of target from variables named
// <prefix>_<SCREAMING_SNAKE(field)>. Absent variables leave the field
// untouched, so defaults are applied by the caller before decoding.
func decodeEnv(target interface{}, prefix string, env map[string]string) error {
	source := map[string]interface{}{}
	for key, value := range env {
		if strings.HasPrefix(key, prefix+"_") {
			source[key] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			// strcase splits the plural acronym "IDs" into "I_Ds";
			// spell it as a word so IgnoredUserIDs maps to *_IGNORED_USER_IDS.
			name := strings.ReplaceAll(fieldName, "IDs", "Ids")
			return mapKey == prefix+"_"+strings.ToUpper(strcase.ToSnake(name))
		},
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			hookCommaSeparatedInts,
			hookLenientBool,
		),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(source); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	return nil
}

// hookCommaSeparatedInts turns "3,17, 21" (and "") into []int for
// fields like IgnoredUserIDs.
func hookCommaSeparatedInts(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]int{}) {
		return data, nil
	}

	raw, _ := data.(string)
	ids := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in list: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// hookLenientBool accepts the documented true|false|1|0 forms in any
// case, and treats an empty value as false.
func hookLenientBool(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}

	raw, _ := data.(string)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true, nil
	case "", "0", "false":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean %q, expected true|false|1|0", raw)
}
