package codec

import "os"

func readFileForTest(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeFileForTest(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
