package v2

import (
	"reflect"

	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

// TransformTypes enumerates every public transform class of this package.
func TransformTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(Normalize{}),
		reflect.TypeOf(Resize{}),
		reflect.TypeOf(CenterCrop{}),
		reflect.TypeOf(FiveCrop{}),
		reflect.TypeOf(TenCrop{}),
		reflect.TypeOf(Pad{}),
		reflect.TypeOf(LinearTransformation{}),
		reflect.TypeOf(Grayscale{}),
		reflect.TypeOf(ConvertDType{}),
		reflect.TypeOf(ToBitmap{}),
		reflect.TypeOf(BitmapToTensor{}),
		reflect.TypeOf(ToTensor{}),
		reflect.TypeOf(Lambda{}),
		reflect.TypeOf(RandomHorizontalFlip{}),
		reflect.TypeOf(RandomVerticalFlip{}),
		reflect.TypeOf(RandomEqualize{}),
		reflect.TypeOf(RandomInvert{}),
		reflect.TypeOf(RandomPosterize{}),
		reflect.TypeOf(RandomSolarize{}),
		reflect.TypeOf(RandomAutocontrast{}),
		reflect.TypeOf(RandomAdjustSharpness{}),
		reflect.TypeOf(RandomGrayscale{}),
		reflect.TypeOf(RandomResizedCrop{}),
		reflect.TypeOf(RandomErasing{}),
		reflect.TypeOf(ColorJitter{}),
		reflect.TypeOf(GaussianBlur{}),
		reflect.TypeOf(RandomCrop{}),
		reflect.TypeOf(RandomResize{}),
		reflect.TypeOf(ScaleJitter{}),
		reflect.TypeOf(RandomShortestSize{}),
		reflect.TypeOf(Compose{}),
		reflect.TypeOf(RandomApply{}),
		reflect.TypeOf(RandomChoice{}),
		reflect.TypeOf(RandomOrder{}),
		reflect.TypeOf(RandAugment{}),
		reflect.TypeOf(TrivialAugmentWide{}),
		reflect.TypeOf(AutoAugment{}),
		reflect.TypeOf(AugMix{}),
	}
}

// Dispatchers enumerates the functional entry points with their declared
// parameter names. Names match the legacy catalog so the consistency suite
// can pair the two tables; resized_crop deliberately grows a trailing
// variadic antialias flag.
func Dispatchers() []common.Dispatcher {
	return []common.Dispatcher{
		{Name: "get_dimensions", Fn: functional.GetDimensions, ParamNames: []string{"img"}},
		{Name: "get_image_size", Fn: functional.GetImageSize, ParamNames: []string{"img"}},
		{Name: "get_image_num_channels", Fn: functional.GetImageNumChannels, ParamNames: []string{"img"}},
		{Name: "to_tensor", Fn: functional.ToTensor, ParamNames: []string{"pic"}},
		{Name: "pil_to_tensor", Fn: functional.BitmapToTensor, ParamNames: []string{"pic"}},
		{Name: "convert_image_dtype", Fn: functional.ConvertDType, ParamNames: []string{"image", "dtype"}},
		{Name: "to_pil_image", Fn: functional.ToBitmap, ParamNames: []string{"pic"}},
		{Name: "normalize", Fn: functional.Normalize, ParamNames: []string{"tensor", "mean", "std"}},
		{Name: "hflip", Fn: functional.HorizontalFlip, ParamNames: []string{"img"}},
		{Name: "vflip", Fn: functional.VerticalFlip, ParamNames: []string{"img"}},
		{Name: "crop", Fn: functional.Crop, ParamNames: []string{"img", "top", "left", "height", "width"}},
		{Name: "center_crop", Fn: functional.CenterCrop, ParamNames: []string{"img", "output_size"}},
		{Name: "pad", Fn: functional.Pad, ParamNames: []string{"img", "padding", "fill", "padding_mode"}},
		{Name: "resize", Fn: functional.Resize, ParamNames: []string{"img", "size", "interpolation", "max_size", "antialias"}},
		{Name: "resized_crop", Fn: functional.ResizedCrop, ParamNames: []string{"img", "top", "left", "height", "width", "size", "interpolation", "antialias"}},
		{Name: "five_crop", Fn: functional.FiveCrop, ParamNames: []string{"img", "size"}},
		{Name: "ten_crop", Fn: functional.TenCrop, ParamNames: []string{"img", "size", "vertical_flip"}},
		{Name: "erase", Fn: functional.Erase, ParamNames: []string{"img", "i", "j", "h", "w", "v"}},
		{Name: "gaussian_blur", Fn: functional.GaussianBlur, ParamNames: []string{"img", "kernel_size", "sigma"}},
		{Name: "adjust_brightness", Fn: functional.AdjustBrightness, ParamNames: []string{"img", "brightness_factor"}},
		{Name: "adjust_contrast", Fn: functional.AdjustContrast, ParamNames: []string{"img", "contrast_factor"}},
		{Name: "adjust_saturation", Fn: functional.AdjustSaturation, ParamNames: []string{"img", "saturation_factor"}},
		{Name: "adjust_hue", Fn: functional.AdjustHue, ParamNames: []string{"img", "hue_factor"}},
		{Name: "adjust_gamma", Fn: functional.AdjustGamma, ParamNames: []string{"img", "gamma", "gain"}},
		{Name: "rgb_to_grayscale", Fn: functional.RGBToGrayscale, ParamNames: []string{"img", "num_output_channels"}},
		{Name: "invert", Fn: functional.Invert, ParamNames: []string{"img"}},
		{Name: "posterize", Fn: functional.Posterize, ParamNames: []string{"img", "bits"}},
		{Name: "solarize", Fn: functional.Solarize, ParamNames: []string{"img", "threshold"}},
		{Name: "adjust_sharpness", Fn: functional.AdjustSharpness, ParamNames: []string{"img", "sharpness_factor"}},
		{Name: "autocontrast", Fn: functional.Autocontrast, ParamNames: []string{"img"}},
		{Name: "equalize", Fn: functional.Equalize, ParamNames: []string{"img"}},
	}
}
