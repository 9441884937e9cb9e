package epub

import "encoding/xml"

// containerXML mirrors META-INF/container.xml, which points at the OPF
// package document's path inside the archive.
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// findRootfile parses container.xml and returns the declared OPF path.
func findRootfile(data []byte) (string, error) {
	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", err
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", errNoRootfile
	}
	return c.Rootfiles[0].FullPath, nil
}
