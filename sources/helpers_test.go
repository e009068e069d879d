package sources

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/mftecmd/records"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("fixtures/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, `C:\$MFT`, config.File)
	assert.True(t, config.Vss)
	assert.True(t, config.Dedupe)
	assert.True(t, config.BodyLF)
	assert.Equal(t, "2006-01-02 15:04:05", config.DateTimeFormat)
	assert.Equal(t, []string{`C:\temp\out`, `C:\temp\out`}, config.Destinations())
	assert.NoError(t, config.Validate())

	options, err := config.Options()
	require.NoError(t, err)
	assert.Equal(t, records.TimestompCreatedOrModified, options.TimestompRule)
	assert.True(t, options.IncludeShortNames)
	assert.False(t, options.AlwaysPopulate0x30)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	dir, err := ioutil.TempDir("", "mftecmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("csvdir: x\n"), 0644))

	_, err = LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	config := &Config{}
	assert.EqualError(t, config.Validate(), "No input file given")

	config.File = "$MFT"
	assert.EqualError(t, config.Validate(),
		"At least one output directory is required")

	config.BodyDir = "out"
	assert.EqualError(t, config.Validate(),
		"A drive letter is required for bodyfile output")

	config.BodyDriveLetter = "C"
	config.TimestompRule = "sometimes"
	assert.Error(t, config.Validate())

	config.TimestompRule = "Created"
	assert.NoError(t, config.Validate())

	config.BodyDriveLetter = "C:"
	assert.NoError(t, config.Validate())

	for _, bad := range []string{"CD", `C:\`, "1"} {
		config.BodyDriveLetter = bad
		assert.Error(t, config.Validate(), bad)
	}
}

func TestNaming(t *testing.T) {
	run_time := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	primary := &SourceDescriptor{Path: `C:\$MFT`}
	shadow := &SourceDescriptor{
		IsVSS:      true,
		VssNumber:  12,
		VssCreated: time.Date(2023, 12, 1, 10, 11, 12, 0, time.UTC),
	}

	assert.Equal(t, "20240102030405_MFTECmd_$MFT_Output",
		BaseName(primary, run_time))
	assert.Equal(t, "20240102030405_VSS12_20231201101112_MFTECmd_$MFT_Output",
		BaseName(shadow, run_time))

	assert.Equal(t, "20240102030405_MFTECmd_$MFT_Output.csv",
		OutputName(primary, run_time, "", ".csv"))
	assert.Equal(t, "mine.csv", OutputName(primary, run_time, "mine.csv", ".csv"))
	assert.Equal(t, "VSS12_20231201101112_mine.csv",
		OutputName(shadow, run_time, "mine.csv", ".csv"))
}

func TestDeviceAndSubpath(t *testing.T) {
	for _, test := range []struct {
		path, device, subpath string
	}{
		{`C:\$MFT`, `\\.\C:`, `\$MFT`},
		{`c:/Windows/System32/../notepad.exe`, `\\.\c:`, `\Windows\notepad.exe`},
		{`\\.\D:\$MFT`, `\\.\D:`, `\$MFT`},
		{`\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy4\$MFT`,
			`\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy4`, `\$MFT`},
		{`E:`, `\\.\E:`, ``},
	} {
		device, subpath, err := DeviceAndSubpath(test.path)
		assert.NoError(t, err, test.path)
		assert.Equal(t, test.device, device, test.path)
		assert.Equal(t, test.subpath, subpath, test.path)
	}

	_, _, err := DeviceAndSubpath("relative/$MFT")
	assert.Error(t, err)
}

func TestShadowPath(t *testing.T) {
	shadow := &ShadowCopy{
		DeviceObject: `\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy4`,
	}

	path, err := ShadowPath(shadow, `C:\$MFT`)
	assert.NoError(t, err)
	assert.Equal(t, `\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy4\$MFT`, path)
}

func TestShadowPathRelative(t *testing.T) {
	saved := absolutePath
	defer func() { absolutePath = saved }()

	absolutePath = func(path string) (string, error) {
		return `C:\Evidence\` + path, nil
	}

	shadow := &ShadowCopy{
		DeviceObject: `\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy3`,
	}

	path, err := ShadowPath(shadow, `$MFT`)
	assert.NoError(t, err)
	assert.Equal(t, `\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy3\Evidence\$MFT`, path)

	path, err = ShadowPath(shadow, `..\Other\$MFT`)
	assert.NoError(t, err)
	assert.Equal(t, `\\?\GLOBALROOT\Device\HarddiskVolumeShadowCopy3\Other\$MFT`, path)

	// A working directory outside any drive still fails.
	absolutePath = func(path string) (string, error) {
		return "/home/user/" + path, nil
	}
	_, err = ShadowPath(shadow, `$MFT`)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(bytes.NewReader(mftContent("a")), 1024)
	require.NoError(t, err)

	b, err := Fingerprint(bytes.NewReader(mftContent("b")), 1024)
	require.NoError(t, err)

	again, err := Fingerprint(bytes.NewReader(mftContent("a")), 1024)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestIsAccessDenied(t *testing.T) {
	assert.True(t, IsAccessDenied(errLocked))
	assert.True(t, IsAccessDenied(errors.Wrap(errLocked, "open")))
	assert.False(t, IsAccessDenied(errors.Wrap(ErrInputNotFound, "open")))
	assert.False(t, IsAccessDenied(nil))
}

func TestFileOpener(t *testing.T) {
	dir, err := ioutil.TempDir("", "mftecmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "$MFT")
	require.NoError(t, ioutil.WriteFile(path, mftContent("x"), 0644))

	stream, err := FileOpener{}.Open(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), stream.Size())
	assert.NoError(t, stream.Close())

	_, err = FileOpener{}.Open(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, ErrInputNotFound))

	_, err = FileOpener{}.Open(dir)
	assert.True(t, errors.Is(err, ErrInputNotFound))
}

func TestCreateOutput(t *testing.T) {
	dir, err := ioutil.TempDir("", "mftecmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.NoError(t, CheckDestination(dir))

	// Missing directories are created.
	fd, err := CreateOutput(filepath.Join(dir, "a", "b"), "out.csv")
	require.NoError(t, err)
	fd.Close()

	_, err = os.Stat(filepath.Join(dir, "a", "b", "out.csv"))
	assert.NoError(t, err)
}

func TestWriteBootSummary(t *testing.T) {
	dir, err := ioutil.TempDir("", "mftecmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	sector := make([]byte, 512)
	copy(sector, []byte{0xEB, 0x52, 0x90})
	copy(sector[3:], "NTFS    ")
	sector[0x0B] = 0x00
	sector[0x0C] = 0x02
	sector[0x0D] = 8
	sector[0x40] = 0xF6
	sector[0x44] = 1
	sector[0x1FE] = 0x55
	sector[0x1FF] = 0xAA

	ctx := &Context{
		Config: &Config{CsvDir: dir},
		Now:    func() time.Time { return runTime },
	}
	source := &SourceDescriptor{Path: `C:\$Boot`, Stream: newFakeStream(sector)}

	name, err := WriteBootSummary(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, "20240102030405_MFTECmd_$Boot_Output.csv", name)

	data, err := ioutil.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Equal(t, 2, len(lines))
	assert.True(t, bytes.HasPrefix(lines[0], []byte("EntryPoint,Signature,")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("EB-52-90,NTFS,512,8,4096,")))
	assert.True(t, bytes.HasSuffix(lines[1], []byte(",55-AA")))

	_, err = WriteBootSummary(&Context{Config: &Config{}}, source)
	assert.Error(t, err)
}
