package schema_test

import "gopkg.in/yaml.v3"

func yamlUnmarshal(doc string, out any) error {
	return yaml.Unmarshal([]byte(doc), out)
}
